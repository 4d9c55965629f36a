package resources

import "time"

// Resource is a downloadable study resource uploaded by the executives.
type Resource struct {
	ID           int64
	Title        string
	Description  string
	StoredName   string
	OriginalName string
	SizeBytes    int64
	UploadedBy   int64
	CreatedAt    time.Time
}
