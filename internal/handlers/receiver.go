package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/foodshare/auth"
	"github.com/diewo77/foodshare/internal/flash"
	"github.com/diewo77/foodshare/internal/gate"
	"github.com/diewo77/foodshare/internal/notify"
	"github.com/diewo77/foodshare/internal/services"
	"github.com/diewo77/foodshare/validation"
	"go.uber.org/zap"
)

// ReceiverHandler serves the receiver dashboard, the claim action and the
// receiver's own request ledger.
type ReceiverHandler struct {
	Users     *services.UserService
	Donations *services.DonationService
	Requests  *services.RequestService
	Notifier  *notify.ClaimNotifier
	Gate      *gate.Gate[auth.Identity]
	Log       *zap.Logger
}

func NewReceiverHandler(users *services.UserService, donations *services.DonationService, requests *services.RequestService, notifier *notify.ClaimNotifier, g *gate.Gate[auth.Identity], log *zap.Logger) *ReceiverHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReceiverHandler{Users: users, Donations: donations, Requests: requests, Notifier: notifier, Gate: g, Log: log}
}

// Dashboard shows the live priority listing. The page is served uncached so a
// claim elsewhere is visible on the next load.
func (h *ReceiverHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	data := pageData(w, r, h.Users)
	available, err := h.Donations.ListAvailable(0)
	if err != nil {
		h.Log.Error("available listing failed", zap.Error(err))
	}
	claimed, err := h.Donations.ListClaimedBy(ident.UserID, 0)
	if err != nil {
		h.Log.Error("claimed listing failed", zap.Uint("receiver_id", ident.UserID), zap.Error(err))
	}
	requests, err := h.Requests.ListByReceiver(ident.UserID, 20)
	if err != nil {
		h.Log.Error("request listing failed", zap.Uint("receiver_id", ident.UserID), zap.Error(err))
	}
	data["Available"] = available
	data["Claimed"] = claimed
	data["Requests"] = requests
	renderTemplate(w, r, "receiver_dashboard", data)
}

// Claim attempts to take an available donation. A donation that does not
// exist is a hard 404; one that exists but was claimed first is a soft
// failure flashed back to the dashboard. The claim is committed before any
// notification runs, so a mail outage can only downgrade the flash to a
// warning, never undo the claim.
func (h *ReceiverHandler) Claim(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())
	if err := h.Gate.Authorize(r.Context(), ident, gate.ActionClaim, "donation", nil); err != nil {
		flash.Set(w, "danger", "Access denied.")
		http.Redirect(w, r, "/", statusSeeOther)
		return
	}
	id64, err := strconv.ParseUint(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id64 == 0 {
		http.NotFound(w, r)
		return
	}

	d, err := h.Donations.Claim(uint(id64), ident.UserID)
	switch {
	case errors.Is(err, services.ErrNotFound):
		http.NotFound(w, r)
		return
	case errors.Is(err, services.ErrNotAvailable):
		flash.Set(w, "danger", "Sorry, this donation has already been claimed by someone else.")
		http.Redirect(w, r, "/receiver/dashboard", statusSeeOther)
		return
	case err != nil:
		h.Log.Error("claim failed", zap.Uint64("donation_id", id64), zap.Error(err))
		flash.Set(w, "danger", "Could not claim donation.")
		http.Redirect(w, r, "/receiver/dashboard", statusSeeOther)
		return
	}

	receiver, err := h.Users.Get(ident.UserID)
	if err != nil || d.Donor.ID == 0 {
		h.Log.Warn("claim party lookup failed", zap.Uint("donation_id", d.ID), zap.Error(err))
		flash.Set(w, "warning", "Donation claimed! Confirmation emails could not be sent.")
		http.Redirect(w, r, "/receiver/dashboard", statusSeeOther)
		return
	}
	if err := h.Notifier.DonationClaimed(d, d.Donor, *receiver); err != nil {
		flash.Set(w, "warning", "Donation claimed! Confirmation emails could not be sent.")
	} else {
		flash.Set(w, "success", "Donation claimed successfully! A confirmation email with PDF has been sent.")
	}
	http.Redirect(w, r, "/receiver/dashboard", statusSeeOther)
}

// RequestFood logs a new demand record.
func (h *ReceiverHandler) RequestFood(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/receiver/dashboard", http.StatusSeeOther)
		return
	}
	ident, _ := auth.IdentityFromContext(r.Context())
	if err := h.Gate.Authorize(r.Context(), ident, gate.ActionCreate, "request", nil); err != nil {
		flash.Set(w, "danger", "Access denied.")
		http.Redirect(w, r, "/", statusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		flash.Set(w, "danger", "invalid form submission")
		http.Redirect(w, r, "/receiver/dashboard", statusSeeOther)
		return
	}

	in := services.RequestInput{
		FoodTypeNeeded: strings.TrimSpace(r.FormValue("food_type_needed")),
		QuantityNeeded: int(formUint(r, "quantity_needed")),
		QuantityUnit:   strings.TrimSpace(r.FormValue("quantity_unit")),
		Description:    strings.TrimSpace(r.FormValue("description")),
		Location:       strings.TrimSpace(r.FormValue("location")),
	}
	v := validation.Violations{}
	validation.Required("food_type_needed", in.FoodTypeNeeded, v)
	validation.Required("location", in.Location, v)
	validation.PositiveInt("quantity_needed", in.QuantityNeeded, v)
	if !v.Empty() {
		flash.Set(w, "danger", "Food type, positive quantity and location are required.")
		http.Redirect(w, r, "/receiver/dashboard", statusSeeOther)
		return
	}

	if _, err := h.Requests.Create(ident.UserID, in); err != nil {
		h.Log.Error("request create failed", zap.Uint("receiver_id", ident.UserID), zap.Error(err))
		flash.Set(w, "danger", "Could not submit request.")
	} else {
		flash.Set(w, "success", "Food request submitted successfully!")
	}
	http.Redirect(w, r, "/receiver/dashboard", statusSeeOther)
}

// CancelRequest withdraws one of the receiver's pending requests.
func (h *ReceiverHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	h.resolveRequest(w, r, gate.ActionCancel)
}

// FulfillRequest closes one of the receiver's pending requests as satisfied.
func (h *ReceiverHandler) FulfillRequest(w http.ResponseWriter, r *http.Request) {
	h.resolveRequest(w, r, gate.ActionFulfill)
}

func (h *ReceiverHandler) resolveRequest(w http.ResponseWriter, r *http.Request, action gate.Action) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/receiver/dashboard", http.StatusSeeOther)
		return
	}
	ident, _ := auth.IdentityFromContext(r.Context())
	id := formUint(r, "id")
	if id == 0 {
		http.NotFound(w, r)
		return
	}
	fr, err := h.Requests.Get(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.Gate.Authorize(r.Context(), ident, action, "request", fr); err != nil {
		flash.Set(w, "danger", "Access denied.")
		http.Redirect(w, r, "/receiver/dashboard", statusSeeOther)
		return
	}

	if action == gate.ActionCancel {
		err = h.Requests.Cancel(id, ident.UserID)
	} else {
		err = h.Requests.Fulfill(id, ident.UserID)
	}
	switch {
	case errors.Is(err, services.ErrNotPending):
		flash.Set(w, "warning", "Only a pending request can be changed.")
	case err != nil:
		h.Log.Error("request update failed", zap.Uint("request_id", id), zap.Error(err))
		flash.Set(w, "danger", "Could not update request.")
	case action == gate.ActionCancel:
		flash.Set(w, "success", "Request cancelled.")
	default:
		flash.Set(w, "success", "Request marked as fulfilled.")
	}
	http.Redirect(w, r, "/receiver/dashboard", statusSeeOther)
}
