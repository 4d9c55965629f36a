package auth

import (
	"time"

	"github.com/bless15/nacos-admin/internal/shared"
)

// Account represents a back-office login account.
type Account struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         shared.Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the session-cached slice of the account.
func (a *Account) Identity() shared.Identity {
	return shared.Identity{ID: a.ID, Name: a.Name, Role: a.Role}
}
