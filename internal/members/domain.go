package members

import "time"

// Member is a registered association member awaiting or holding approval.
type Member struct {
	ID           int64
	FullName     string
	Email        string
	MatricNumber string
	Level        string
	Approved     bool
	ApprovedBy   int64
	ApprovedAt   time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListFilters narrows and pages the member listing.
type ListFilters struct {
	Search  string
	Page    int
	PerPage int
}
