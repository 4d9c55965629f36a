package interests

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/bless15/nacos-admin/internal/shared"
)

// ErrAlreadyDecided indicates the request has left the pending state.
var ErrAlreadyDecided = errors.New("interests: request already decided")

// Notifier dispatches decision notifications to the requester. Enqueue
// failures are logged, never surfaced to the admin.
type Notifier interface {
	NotifyInterestDecision(ctx context.Context, email, organisation, status string) error
}

// Service handles interest request business logic.
type Service struct {
	logger   *slog.Logger
	repo     RepositoryPort
	notifier Notifier
}

// NewService builds a Service instance.
func NewService(logger *slog.Logger, repo RepositoryPort, notifier Notifier) *Service {
	return &Service{logger: logger, repo: repo, notifier: notifier}
}

// List returns all requests, pending first.
func (s *Service) List(ctx context.Context) ([]Interest, error) {
	return s.repo.List(ctx)
}

// Get fetches one request.
func (s *Service) Get(ctx context.Context, id int64) (Interest, error) {
	return s.repo.Get(ctx, id)
}

// Submit records a request from the public form.
func (s *Service) Submit(ctx context.Context, in Interest) (Interest, error) {
	in.Organisation = strings.TrimSpace(in.Organisation)
	in.ContactName = strings.TrimSpace(in.ContactName)
	in.ContactEmail = strings.ToLower(strings.TrimSpace(in.ContactEmail))
	in.Message = strings.TrimSpace(in.Message)
	if in.Organisation == "" || in.ContactName == "" || in.ContactEmail == "" {
		return Interest{}, errors.New("interests: organisation, contact name and email are required")
	}
	return s.repo.Create(ctx, in)
}

// Approve marks a pending request approved on behalf of actor.
func (s *Service) Approve(ctx context.Context, actor shared.Identity, id int64) (Interest, error) {
	return s.decide(ctx, actor, id, StatusApproved)
}

// Reject marks a pending request rejected on behalf of actor.
func (s *Service) Reject(ctx context.Context, actor shared.Identity, id int64) (Interest, error) {
	return s.decide(ctx, actor, id, StatusRejected)
}

func (s *Service) decide(ctx context.Context, actor shared.Identity, id int64, status string) (Interest, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Interest{}, err
	}
	if current.Status != StatusPending {
		return current, ErrAlreadyDecided
	}
	decided, err := s.repo.Decide(ctx, id, actor.ID, status, time.Now())
	if err != nil {
		return Interest{}, err
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyInterestDecision(ctx, decided.ContactEmail, decided.Organisation, decided.Status); err != nil {
			s.logger.Warn("interest decision notification", slog.Any("error", err), slog.Int64("id", decided.ID))
		}
	}
	return decided, nil
}

// CountPending returns the number of undecided requests.
func (s *Service) CountPending(ctx context.Context) (int, error) {
	return s.repo.CountPending(ctx)
}
