package policy

import (
	"context"

	"github.com/diewo77/foodshare/auth"
	"github.com/diewo77/foodshare/internal/gate"
	"github.com/diewo77/foodshare/internal/models"
)

// Ownable is implemented by resources that have an owning user.
type Ownable interface {
	GetUserID() uint
}

// New builds the application Gate with policies for every resource the
// handlers touch. The subject is the session identity (id + role).
func New() *gate.Gate[auth.Identity] {
	g := gate.NewGate[auth.Identity]()
	g.Register("donation", donationPolicy{})
	g.Register("request", requestPolicy{})
	g.Register("report", reportPolicy{})
	return g
}

// donationPolicy: donors create and list their own offers; receivers browse
// and claim; a claimed donation is completed by its owning donor or an admin.
type donationPolicy struct{}

func (donationPolicy) Can(_ context.Context, ident auth.Identity, action gate.Action, resource any) bool {
	role := models.Role(ident.Role)
	switch action {
	case gate.ActionCreate:
		return role == models.RoleDonor
	case gate.ActionList:
		// receivers browse the priority listing; donors list their own
		return role == models.RoleReceiver || role == models.RoleDonor
	case gate.ActionClaim:
		return role == models.RoleReceiver
	case gate.ActionComplete:
		if role == models.RoleAdmin {
			return true
		}
		if role != models.RoleDonor {
			return false
		}
		ownable, ok := resource.(Ownable)
		return ok && ownable.GetUserID() == ident.UserID
	case gate.ActionView:
		return role.Valid()
	}
	return false
}

// requestPolicy: receivers own their demand records end to end.
type requestPolicy struct{}

func (requestPolicy) Can(_ context.Context, ident auth.Identity, action gate.Action, resource any) bool {
	if models.Role(ident.Role) != models.RoleReceiver {
		return models.Role(ident.Role) == models.RoleAdmin && action == gate.ActionList
	}
	switch action {
	case gate.ActionCreate, gate.ActionList:
		return true
	case gate.ActionCancel, gate.ActionFulfill:
		ownable, ok := resource.(Ownable)
		return ok && ownable.GetUserID() == ident.UserID
	}
	return false
}

// reportPolicy: aggregate views are admin-only.
type reportPolicy struct{}

func (reportPolicy) Can(_ context.Context, ident auth.Identity, action gate.Action, _ any) bool {
	return models.Role(ident.Role) == models.RoleAdmin && (action == gate.ActionView || action == gate.ActionList)
}
