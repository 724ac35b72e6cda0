package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/diewo77/foodshare/auth"
	"github.com/diewo77/foodshare/internal/flash"
	"github.com/diewo77/foodshare/internal/gate"
	"github.com/diewo77/foodshare/internal/models"
	"github.com/diewo77/foodshare/internal/services"
	"github.com/diewo77/foodshare/validation"
	"go.uber.org/zap"
)

// DonorHandler serves the donor dashboard and donation lifecycle actions.
type DonorHandler struct {
	Users     *services.UserService
	Donations *services.DonationService
	Reports   *services.ReportService
	Gate      *gate.Gate[auth.Identity]
	Log       *zap.Logger
}

func NewDonorHandler(users *services.UserService, donations *services.DonationService, reports *services.ReportService, g *gate.Gate[auth.Identity], log *zap.Logger) *DonorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &DonorHandler{Users: users, Donations: donations, Reports: reports, Gate: g, Log: log}
}

func (h *DonorHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())

	data := pageData(w, r, h.Users)
	data["Stats"] = h.Reports.DonorStats(ident.UserID)
	data["Monthly"] = h.Reports.DonorMonthly(ident.UserID, time.Now())
	recent, err := h.Donations.ListByDonor(ident.UserID, 10)
	if err != nil {
		h.Log.Error("donor listing failed", zap.Uint("donor_id", ident.UserID), zap.Error(err))
	}
	data["RecentDonations"] = recent
	renderTemplate(w, r, "donor_dashboard", data)
}

// Donate posts a new donation from the dashboard form.
func (h *DonorHandler) Donate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/donor/dashboard", http.StatusSeeOther)
		return
	}
	ident, _ := auth.IdentityFromContext(r.Context())
	if err := h.Gate.Authorize(r.Context(), ident, gate.ActionCreate, "donation", nil); err != nil {
		flash.Set(w, "danger", "Access denied.")
		http.Redirect(w, r, "/", statusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		flash.Set(w, "danger", "invalid form submission")
		http.Redirect(w, r, "/donor/dashboard", statusSeeOther)
		return
	}

	in := services.DonationInput{
		FoodType:     strings.TrimSpace(r.FormValue("food_type")),
		Quantity:     int(formUint(r, "quantity")),
		QuantityUnit: strings.TrimSpace(r.FormValue("quantity_unit")),
		Description:  strings.TrimSpace(r.FormValue("description")),
		Location:     strings.TrimSpace(r.FormValue("location")),
	}
	if raw := strings.TrimSpace(r.FormValue("expiry_date")); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			flash.Set(w, "danger", "Invalid expiry date.")
			http.Redirect(w, r, "/donor/dashboard", statusSeeOther)
			return
		}
		in.ExpiryDate = &t
	}

	v := validation.Violations{}
	validation.Required("food_type", in.FoodType, v)
	validation.Required("location", in.Location, v)
	validation.PositiveInt("quantity", in.Quantity, v)
	if !v.Empty() {
		flash.Set(w, "danger", "Food type, positive quantity and location are required.")
		http.Redirect(w, r, "/donor/dashboard", statusSeeOther)
		return
	}

	if _, err := h.Donations.Create(ident.UserID, in); err != nil {
		h.Log.Error("donation create failed", zap.Uint("donor_id", ident.UserID), zap.Error(err))
		flash.Set(w, "danger", "Could not post donation.")
	} else {
		flash.Set(w, "success", "Donation posted successfully!")
	}
	http.Redirect(w, r, "/donor/dashboard", statusSeeOther)
}

// Complete marks one of the donor's claimed donations as handed over.
func (h *DonorHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/donor/dashboard", http.StatusSeeOther)
		return
	}
	ident, _ := auth.IdentityFromContext(r.Context())
	id := formUint(r, "id")
	if id == 0 {
		http.NotFound(w, r)
		return
	}
	d, err := h.Donations.Get(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.Gate.Authorize(r.Context(), ident, gate.ActionComplete, "donation", d); err != nil {
		flash.Set(w, "danger", "Access denied.")
		http.Redirect(w, r, "/donor/dashboard", statusSeeOther)
		return
	}

	asAdmin := models.Role(ident.Role) == models.RoleAdmin
	_, err = h.Donations.Complete(id, ident.UserID, asAdmin)
	switch {
	case errors.Is(err, services.ErrNotClaimed):
		flash.Set(w, "warning", "Only a claimed donation can be completed.")
	case err != nil:
		h.Log.Error("donation complete failed", zap.Uint("donation_id", id), zap.Error(err))
		flash.Set(w, "danger", "Could not complete donation.")
	default:
		flash.Set(w, "success", "Donation marked as completed.")
	}
	http.Redirect(w, r, "/donor/dashboard", statusSeeOther)
}
