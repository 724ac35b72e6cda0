package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/foodshare/auth"
	"github.com/diewo77/foodshare/internal/flash"
	"github.com/diewo77/foodshare/internal/models"
	"github.com/diewo77/foodshare/internal/services"
	"github.com/diewo77/foodshare/internal/view"
)

// Explicit constant for 303 See Other (Post/Redirect/Get)
const statusSeeOther = 303

// renderTemplate uses the shared view.Render to ensure layout, funcs, and caching.
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if err := view.Render(w, r, name+".html", data); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		if _, werr := w.Write([]byte("template error")); werr != nil {
			_ = werr
		}
	}
}

// pageData builds the base template payload: the logged-in user (if any) and
// the pending flash message, both consumed on this render.
func pageData(w http.ResponseWriter, r *http.Request, users *services.UserService) map[string]any {
	data := map[string]any{}
	if ident, ok := auth.IdentityFromContext(r.Context()); ok {
		if u, err := users.Get(ident.UserID); err == nil {
			data["User"] = u
		}
	}
	if level, msg := flash.Pop(w, r); msg != "" {
		data["Flash"] = msg
		data["FlashLevel"] = level
	}
	return data
}

// formUint parses a numeric form field; zero means absent or invalid.
func formUint(r *http.Request, field string) uint {
	v, err := strconv.ParseUint(r.FormValue(field), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

// dashboardPath maps a role to its landing page.
func dashboardPath(role string) string {
	switch models.Role(role) {
	case models.RoleDonor:
		return "/donor/dashboard"
	case models.RoleReceiver:
		return "/receiver/dashboard"
	case models.RoleAdmin:
		return "/admin/dashboard"
	}
	return "/"
}
