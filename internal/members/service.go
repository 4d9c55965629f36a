package members

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bless15/nacos-admin/internal/shared"
)

// ErrAlreadyApproved indicates the member approval flag was already set.
var ErrAlreadyApproved = errors.New("members: already approved")

// Notifier dispatches member lifecycle notifications. Delivery happens out of
// band; enqueue failures are logged, never surfaced to the admin.
type Notifier interface {
	NotifyMemberApproved(ctx context.Context, email, fullName string) error
}

// Service handles member business logic.
type Service struct {
	logger   *slog.Logger
	repo     RepositoryPort
	notifier Notifier
	titler   cases.Caser
}

// NewService builds a Service instance.
func NewService(logger *slog.Logger, repo RepositoryPort, notifier Notifier) *Service {
	return &Service{logger: logger, repo: repo, notifier: notifier, titler: cases.Title(language.English)}
}

// List returns a filtered page of members.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Member, int, error) {
	return s.repo.List(ctx, filters)
}

// Get fetches one member.
func (s *Service) Get(ctx context.Context, id int64) (Member, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a member after canonicalising the submitted fields.
func (s *Service) Create(ctx context.Context, m Member) (Member, error) {
	if err := s.normalize(&m); err != nil {
		return Member{}, err
	}
	return s.repo.Create(ctx, m)
}

// Update rewrites a member record.
func (s *Service) Update(ctx context.Context, m Member) (Member, error) {
	if err := s.normalize(&m); err != nil {
		return Member{}, err
	}
	return s.repo.Update(ctx, m)
}

// Delete removes a member.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Approve marks the member approved on behalf of actor and dispatches the
// welcome notification.
func (s *Service) Approve(ctx context.Context, actor shared.Identity, id int64) (Member, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Member{}, err
	}
	if current.Approved {
		return current, ErrAlreadyApproved
	}
	approved, err := s.repo.Approve(ctx, id, actor.ID, time.Now())
	if err != nil {
		return Member{}, err
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyMemberApproved(ctx, approved.Email, approved.FullName); err != nil {
			s.logger.Warn("member approval notification", slog.Any("error", err), slog.Int64("id", approved.ID))
		}
	}
	return approved, nil
}

// Count returns total and pending member counts.
func (s *Service) Count(ctx context.Context) (int, int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) normalize(m *Member) error {
	m.FullName = s.titler.String(strings.TrimSpace(m.FullName))
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	m.MatricNumber = strings.ToUpper(strings.TrimSpace(m.MatricNumber))
	m.Level = strings.TrimSpace(m.Level)
	if m.FullName == "" || m.Email == "" || m.MatricNumber == "" {
		return errors.New("members: full name, email and matric number are required")
	}
	return nil
}
