package gate

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"

	// Domain transitions on donations and requests.
	ActionClaim    Action = "claim"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
	ActionFulfill  Action = "fulfill"
)
