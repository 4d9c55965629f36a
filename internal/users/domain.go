package users

import (
	"time"

	"github.com/bless15/nacos-admin/internal/shared"
)

// User represents a back-office account as shown on management screens.
type User struct {
	ID        int64
	Email     string
	Name      string
	Role      shared.Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
