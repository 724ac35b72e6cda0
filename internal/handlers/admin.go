package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/diewo77/foodshare/auth"
	"github.com/diewo77/foodshare/internal/flash"
	"github.com/diewo77/foodshare/internal/gate"
	"github.com/diewo77/foodshare/internal/models"
	"github.com/diewo77/foodshare/internal/services"
	"go.uber.org/zap"
)

// AdminHandler serves the aggregate dashboard and per-donor badge views.
type AdminHandler struct {
	Users   *services.UserService
	Reports *services.ReportService
	Gate    *gate.Gate[auth.Identity]
	Log     *zap.Logger
}

func NewAdminHandler(users *services.UserService, reports *services.ReportService, g *gate.Gate[auth.Identity], log *zap.Logger) *AdminHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminHandler{Users: users, Reports: reports, Gate: g, Log: log}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())
	if err := h.Gate.Authorize(r.Context(), ident, gate.ActionView, "report", nil); err != nil {
		flash.Set(w, "danger", "Access denied.")
		http.Redirect(w, r, "/", statusSeeOther)
		return
	}
	data := pageData(w, r, h.Users)
	data["Overview"] = h.Reports.Overview(time.Now())
	renderTemplate(w, r, "admin_dashboard", data)
}

// Badge shows one donor's achievement badges.
func (h *AdminHandler) Badge(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())
	if err := h.Gate.Authorize(r.Context(), ident, gate.ActionView, "report", nil); err != nil {
		flash.Set(w, "danger", "Access denied.")
		http.Redirect(w, r, "/", statusSeeOther)
		return
	}
	id64, err := strconv.ParseUint(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id64 == 0 {
		http.NotFound(w, r)
		return
	}
	donor, err := h.Users.Get(uint(id64))
	if err != nil || donor.Role != models.RoleDonor {
		http.NotFound(w, r)
		return
	}
	stats := h.Reports.DonorStats(donor.ID)

	data := pageData(w, r, h.Users)
	data["Donor"] = donor
	data["Stats"] = stats
	data["Badges"] = services.BadgesFor(stats)
	renderTemplate(w, r, "donor_badges", data)
}
