package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/bless15/nacos-admin/internal/auth"
	"github.com/bless15/nacos-admin/internal/shared"
	_ "github.com/bless15/nacos-admin/testing"
)

type stubRepo struct {
	account  *auth.Account
	sessions map[string]int64
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	if s.account == nil || s.account.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.account, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.Account, error) {
	if s.account == nil || s.account.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.account, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, accountID int64, expiresAt time.Time, ip, ua string) error {
	if s.sessions == nil {
		s.sessions = make(map[string]int64)
	}
	s.sessions[id] = accountID
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hashed)
}

func newSessionManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func TestAuthenticateCollapsesFailures(t *testing.T) {
	account := &auth.Account{
		ID:           1,
		Email:        "chair@nacos.test",
		Name:         "Association Chair",
		PasswordHash: hashPassword(t, "correct-horse"),
		Role:         shared.RoleAdmin,
		IsActive:     true,
	}

	cases := []struct {
		name     string
		repo     *stubRepo
		email    string
		password string
		wantErr  bool
	}{
		{name: "unknown email", repo: &stubRepo{}, email: "nobody@nacos.test", password: "whatever", wantErr: true},
		{name: "wrong password", repo: &stubRepo{account: account}, email: account.Email, password: "incorrect", wantErr: true},
		{name: "inactive account", repo: &stubRepo{account: &auth.Account{ID: 2, Email: "old@nacos.test", PasswordHash: hashPassword(t, "correct-horse"), Role: shared.RoleExecutive}}, email: "old@nacos.test", password: "correct-horse", wantErr: true},
		{name: "valid credentials", repo: &stubRepo{account: account}, email: account.Email, password: "correct-horse", wantErr: false},
	}

	service := func(repo *stubRepo) *auth.Service {
		return auth.NewService(repo, newSessionManager(t))
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := service(tc.repo).Authenticate(context.Background(), tc.email, tc.password)
			if tc.wantErr {
				if !errors.Is(err, shared.ErrInvalidCredentials) {
					t.Fatalf("expected ErrInvalidCredentials, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got == nil || got.ID != account.ID {
				t.Fatalf("expected account %d, got %+v", account.ID, got)
			}
		})
	}
}

func TestLoginRegeneratesSession(t *testing.T) {
	repo := &stubRepo{account: &auth.Account{ID: 9, Email: "sec@nacos.test", Name: "General Secretary", Role: shared.RoleExecutive, IsActive: true}}
	sessions := newSessionManager(t)
	service := auth.NewService(repo, sessions)

	sess := &shared.Session{ID: "pre-login"}
	if err := service.Login(context.Background(), sess, repo.account, "127.0.0.1", "test-agent"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if sess.ID == "pre-login" {
		t.Fatalf("expected session id to change on login")
	}
	identity := sess.Identity()
	if identity == nil || identity.ID != 9 || identity.Role != shared.RoleExecutive {
		t.Fatalf("expected bound identity, got %+v", identity)
	}
	if _, ok := repo.sessions[sess.ID]; !ok {
		t.Fatalf("expected server side session record")
	}
}

func TestLogoutClearsIdentity(t *testing.T) {
	repo := &stubRepo{account: &auth.Account{ID: 4, Email: "pr@nacos.test", Name: "PRO", Role: shared.RoleAdmin, IsActive: true}}
	sessions := newSessionManager(t)
	service := auth.NewService(repo, sessions)

	sess := &shared.Session{}
	if err := service.Login(context.Background(), sess, repo.account, "127.0.0.1", "test-agent"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := service.Logout(context.Background(), sess); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if sess.Identity() != nil {
		t.Fatalf("expected identity cleared after logout")
	}
	if len(repo.sessions) != 0 {
		t.Fatalf("expected server side session removed")
	}
}
