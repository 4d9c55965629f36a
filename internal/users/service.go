package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bless15/nacos-admin/internal/shared"
)

// Service handles back-office account business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get fetches one account.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

// Create hashes the password and inserts the account.
func (s *Service) Create(ctx context.Context, u User, password string) (User, error) {
	if err := normalize(&u); err != nil {
		return User{}, err
	}
	if len(password) < 8 {
		return User{}, errors.New("users: password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return s.repo.Create(ctx, u, string(hash))
}

// Update rewrites name and email, optionally replacing the password.
func (s *Service) Update(ctx context.Context, u User, newPassword string) (User, error) {
	if err := normalize(&u); err != nil {
		return User{}, err
	}
	if newPassword != "" && len(newPassword) < 8 {
		return User{}, errors.New("users: password must be at least 8 characters")
	}
	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		return User{}, err
	}
	if newPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		if err := s.repo.SetPassword(ctx, u.ID, string(hash)); err != nil {
			return User{}, err
		}
	}
	return updated, nil
}

// SetActive flips the active flag. Deactivating yourself is rejected for the
// same lockout reason as self-demotion.
func (s *Service) SetActive(ctx context.Context, actor shared.Identity, id int64, active bool) (User, error) {
	if actor.ID == id && !active {
		return User{}, shared.ErrSelfDemotion
	}
	return s.repo.SetActive(ctx, id, active)
}

// ChangeRole rewrites an account's role on behalf of actor. An admin removing
// their own admin role is rejected before any store mutation.
func (s *Service) ChangeRole(ctx context.Context, actor shared.Identity, id int64, role shared.Role) (User, error) {
	if !role.Valid() {
		return User{}, errors.New("users: unknown role")
	}
	if actor.ID == id && role != shared.RoleAdmin {
		return User{}, shared.ErrSelfDemotion
	}
	return s.repo.ChangeRole(ctx, id, actor.ID, role, time.Now())
}

func normalize(u *User) error {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Name == "" || u.Email == "" {
		return errors.New("users: name and email are required")
	}
	if u.Role == "" {
		u.Role = shared.RoleExecutive
	}
	if !u.Role.Valid() {
		return errors.New("users: unknown role")
	}
	return nil
}
