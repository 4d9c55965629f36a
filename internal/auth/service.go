package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bless15/nacos-admin/internal/shared"
)

// Service wraps credential verification and session identity rules.
type Service struct {
	repo     Repository
	sessions *shared.SessionManager
}

// NewService constructs a new Service.
func NewService(repo Repository, sessions *shared.SessionManager) *Service {
	return &Service{repo: repo, sessions: sessions}
}

// Authenticate validates email/password credentials. Every failure path
// collapses into ErrInvalidCredentials so responses cannot be used to
// enumerate accounts.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return account, nil
}

// Login binds the account identity into the session and regenerates the
// session identifier to prevent fixation.
func (s *Service) Login(ctx context.Context, sess *shared.Session, account *Account, ip, ua string) error {
	s.sessions.Regenerate(sess)
	sess.BindIdentity(account.Identity())
	expiresAt := time.Now().Add(s.sessions.TTL())
	return s.repo.CreateSession(ctx, sess.ID, account.ID, expiresAt, ip, ua)
}

// Logout clears the bound identity and destroys the session.
func (s *Service) Logout(ctx context.Context, sess *shared.Session) error {
	if sess == nil {
		return nil
	}
	err := s.repo.DeleteSession(ctx, sess.ID)
	sess.ClearIdentity()
	s.sessions.Destroy(sess)
	return err
}

// CurrentIdentity reads the identity bound to the request session. Nil means
// anonymous, including sessions whose Redis payload already expired.
func CurrentIdentity(ctx context.Context) *shared.Identity {
	return shared.IdentityFromContext(ctx)
}
