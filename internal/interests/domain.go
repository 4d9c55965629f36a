package interests

import "time"

// Status values for an interest request.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Interest is a partnership request submitted from the public site.
type Interest struct {
	ID           int64
	Organisation string
	ContactName  string
	ContactEmail string
	Message      string
	Status       string
	DecidedBy    int64
	DecidedAt    time.Time
	CreatedAt    time.Time
}
