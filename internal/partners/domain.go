package partners

import "time"

// Partner is an organisation partnering with the association.
type Partner struct {
	ID           int64
	Name         string
	Website      string
	ContactEmail string
	Blurb        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
