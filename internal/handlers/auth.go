package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/diewo77/foodshare/auth"
	"github.com/diewo77/foodshare/internal/flash"
	"github.com/diewo77/foodshare/internal/models"
	"github.com/diewo77/foodshare/internal/notify"
	"github.com/diewo77/foodshare/internal/services"
	"github.com/diewo77/foodshare/validation"
	"go.uber.org/zap"
)

// AuthHandler serves the entry page, signup, login and logout.
type AuthHandler struct {
	Users    *services.UserService
	Notifier *notify.ClaimNotifier
	Log      *zap.Logger
}

func NewAuthHandler(users *services.UserService, notifier *notify.ClaimNotifier, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{Users: users, Notifier: notifier, Log: log}
}

// Index renders the landing/login page, or forwards a live session to its
// dashboard.
func (h *AuthHandler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if ident, ok := auth.IdentityFromContext(r.Context()); ok {
		if h.Users.Exists(ident.UserID, models.Role(ident.Role)) {
			http.Redirect(w, r, dashboardPath(ident.Role), http.StatusSeeOther)
			return
		}
		// Stale session: clear and continue to render the entry page.
		auth.ClearSession(w)
	}
	renderTemplate(w, r, "index", pageData(w, r, h.Users))
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "register", pageData(w, r, h.Users))
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET,POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		renderTemplate(w, r, "register", map[string]any{"Error": "invalid form submission"})
		return
	}

	in := services.RegisterInput{
		Username:     strings.TrimSpace(r.FormValue("username")),
		Email:        strings.TrimSpace(r.FormValue("email")),
		Password:     r.FormValue("password"),
		Role:         models.Role(r.FormValue("user_type")),
		Organization: strings.TrimSpace(r.FormValue("organization_name")),
		Phone:        strings.TrimSpace(r.FormValue("phone")),
		Address:      strings.TrimSpace(r.FormValue("address")),
	}

	v := validation.Violations{}
	validation.Required("username", in.Username, v)
	validation.Required("email", in.Email, v)
	validation.Required("password", in.Password, v)
	validation.MaxLen("username", in.Username, 80, v)
	validation.MaxLen("email", in.Email, 120, v)
	if !v.Empty() {
		renderTemplate(w, r, "register", map[string]any{"Error": "username, email and password are required"})
		return
	}
	// Self-service signup only creates donors and receivers.
	if in.Role != models.RoleDonor && in.Role != models.RoleReceiver {
		renderTemplate(w, r, "register", map[string]any{"Error": "invalid account type"})
		return
	}

	u, err := h.Users.Register(in)
	switch {
	case errors.Is(err, services.ErrDuplicateUsername):
		renderTemplate(w, r, "register", map[string]any{"Error": "Username already exists!"})
		return
	case errors.Is(err, services.ErrDuplicateEmail):
		renderTemplate(w, r, "register", map[string]any{"Error": "Email already registered!"})
		return
	case err != nil:
		h.Log.Error("registration failed", zap.Error(err))
		renderTemplate(w, r, "register", map[string]any{"Error": "could not create account"})
		return
	}

	// Welcome mail carries the generated UID. Delivery failure does not block
	// the signup.
	if err := h.Notifier.WelcomeUID(*u); err != nil {
		flash.Set(w, "success", "Registration successful! Your Unique ID is "+u.UniqueID+". Please login.")
	} else {
		flash.Set(w, "success", "Registration successful! Your Unique ID is "+u.UniqueID+" (also sent by email). Please login.")
	}
	http.Redirect(w, r, "/", statusSeeOther)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		flash.Set(w, "danger", "invalid form submission")
		http.Redirect(w, r, "/", statusSeeOther)
		return
	}
	login := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	role := models.Role(r.FormValue("user_type"))

	if login == "" || password == "" || !role.Valid() {
		flash.Set(w, "danger", "Invalid credentials or user type!")
		http.Redirect(w, r, "/", statusSeeOther)
		return
	}
	u, err := h.Users.Authenticate(login, password, role)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			h.Log.Error("login failed", zap.Error(err))
		}
		flash.Set(w, "danger", "Invalid credentials or user type!")
		http.Redirect(w, r, "/", statusSeeOther)
		return
	}
	auth.CreateSession(w, u.ID, string(u.Role))
	http.Redirect(w, r, dashboardPath(string(u.Role)), statusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	flash.Set(w, "info", "You have been logged out.")
	http.Redirect(w, r, "/", statusSeeOther)
}

// Dashboard forwards to the role-specific landing page.
func (h *AuthHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, dashboardPath(ident.Role), http.StatusSeeOther)
}
