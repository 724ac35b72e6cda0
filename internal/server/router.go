package server

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/foodshare/auth"
	"github.com/diewo77/foodshare/httpx"
	"github.com/diewo77/foodshare/internal/config"
	"github.com/diewo77/foodshare/internal/handlers"
	"github.com/diewo77/foodshare/internal/models"
	"github.com/diewo77/foodshare/internal/notify"
	"github.com/diewo77/foodshare/internal/policy"
	"github.com/diewo77/foodshare/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, cfg config.Config, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	mux := http.NewServeMux()

	users := services.NewUserService(db)
	donations := services.NewDonationService(db)
	requests := services.NewRequestService(db)
	reports := services.NewReportService(db, log)
	mailer := notify.NewMailer(cfg.SMTP, log)
	notifier := notify.NewClaimNotifier(mailer, log)
	g := policy.New()

	// The verifier re-checks each session against the database so a deleted
	// account or changed role invalidates old cookies.
	auth.SetUserVerifier(func(_ context.Context, uid uint, role string) bool {
		return users.Exists(uid, models.Role(role))
	})

	// Health endpoints
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, werr := w.Write([]byte(`{"status":"degraded"}`)); werr != nil {
				_ = werr
			}
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	ah := handlers.NewAuthHandler(users, notifier, log)
	mux.Handle("/", auth.Middleware(http.HandlerFunc(ah.Index)))
	mux.Handle("/register", auth.Middleware(http.HandlerFunc(ah.Register)))
	mux.Handle("/login", auth.Middleware(http.HandlerFunc(ah.Login)))
	mux.Handle("/logout", auth.Middleware(http.HandlerFunc(ah.Logout)))
	mux.Handle("/dashboard", auth.Middleware(auth.RequireAuth(http.HandlerFunc(ah.Dashboard))))

	donor := handlers.NewDonorHandler(users, donations, reports, g, log)
	donorRoute := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(auth.RequireRole(string(models.RoleDonor), h)))
	}
	mux.Handle("/donor/dashboard", donorRoute(donor.Dashboard))
	mux.Handle("/donor/donate", donorRoute(donor.Donate))
	mux.Handle("/donor/complete", donorRoute(donor.Complete))

	receiver := handlers.NewReceiverHandler(users, donations, requests, notifier, g, log)
	receiverRoute := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(auth.RequireRole(string(models.RoleReceiver), h)))
	}
	mux.Handle("/receiver/dashboard", receiverRoute(receiver.Dashboard))
	mux.Handle("/receiver/claim", receiverRoute(receiver.Claim))
	mux.Handle("/receiver/request", receiverRoute(receiver.RequestFood))
	mux.Handle("/receiver/request/cancel", receiverRoute(receiver.CancelRequest))
	mux.Handle("/receiver/request/fulfill", receiverRoute(receiver.FulfillRequest))

	admin := handlers.NewAdminHandler(users, reports, g, log)
	adminRoute := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(auth.RequireRole(string(models.RoleAdmin), h)))
	}
	mux.Handle("/admin/dashboard", adminRoute(admin.Dashboard))
	mux.Handle("/admin/badge", adminRoute(admin.Badge))

	return withRecover(withLogging(mux, log), log)
}

func withLogging(next http.Handler, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}

func withRecover(next http.Handler, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic recovered", zap.Any("panic", rec), zap.String("path", r.URL.Path))
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
