package domain

import "errors"

// Status is the account lifecycle state. PENDING is the initial state for
// password accounts; externally-authenticated accounts are born ACTIVE.
// DELETED is terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusDeleted   Status = "deleted"
)

// ErrIllegalTransition is returned by transition methods when the target
// state is unreachable from the current one.
var ErrIllegalTransition = errors.New("domain: illegal status transition")

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusActive, StatusInactive, StatusSuspended, StatusDeleted:
		return Status(s), true
	}
	return "", false
}
