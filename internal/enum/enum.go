package enum

// ── Order item workflow (CHECK constrained in DB) ──

const (
	ItemStatusNew        = "NEW"
	ItemStatusInProgress = "IN_PROGRESS"
	ItemStatusServed     = "SERVED"
	ItemStatusCancelled  = "CANCELLED"
)

// itemTransitions maps a status to the statuses it may move to.
// Terminal statuses have no entries.
var itemTransitions = map[string][]string{
	ItemStatusNew:        {ItemStatusInProgress, ItemStatusServed, ItemStatusCancelled},
	ItemStatusInProgress: {ItemStatusServed, ItemStatusCancelled},
}

// IsItemStatus reports whether s is a known order item status.
func IsItemStatus(s string) bool {
	switch s {
	case ItemStatusNew, ItemStatusInProgress, ItemStatusServed, ItemStatusCancelled:
		return true
	}
	return false
}

// CanTransitionItem reports whether an item may move from one status to
// another. Setting the same status again is allowed as a no-op.
func CanTransitionItem(from, to string) bool {
	if from == to {
		return IsItemStatus(to)
	}
	for _, next := range itemTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ── Invitations ──

const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusDeclined = "declined"
)

// ── Member roles ──

const (
	MemberRoleOwner = "owner"
	MemberRoleAdmin = "admin"
)
