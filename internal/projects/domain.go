package projects

import "time"

// Status values for a project.
const (
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
)

// Project is an association project shown on the public site.
type Project struct {
	ID          int64
	Title       string
	Slug        string
	Description string
	Status      string
	Coordinator string
	StartedAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
