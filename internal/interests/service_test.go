package interests_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bless15/nacos-admin/internal/interests"
	"github.com/bless15/nacos-admin/internal/shared"
	_ "github.com/bless15/nacos-admin/testing"
)

type stubRepo struct {
	requests map[int64]interests.Interest
}

func (s *stubRepo) List(ctx context.Context) ([]interests.Interest, error) {
	out := make([]interests.Interest, 0, len(s.requests))
	for _, in := range s.requests {
		out = append(out, in)
	}
	return out, nil
}

func (s *stubRepo) Get(ctx context.Context, id int64) (interests.Interest, error) {
	in, ok := s.requests[id]
	if !ok {
		return interests.Interest{}, shared.ErrNotFound
	}
	return in, nil
}

func (s *stubRepo) Create(ctx context.Context, in interests.Interest) (interests.Interest, error) {
	if s.requests == nil {
		s.requests = make(map[int64]interests.Interest)
	}
	in.ID = int64(len(s.requests) + 1)
	in.Status = interests.StatusPending
	s.requests[in.ID] = in
	return in, nil
}

func (s *stubRepo) Decide(ctx context.Context, id, actorID int64, status string, at time.Time) (interests.Interest, error) {
	in, ok := s.requests[id]
	if !ok {
		return interests.Interest{}, shared.ErrNotFound
	}
	in.Status = status
	in.DecidedBy = actorID
	in.DecidedAt = at
	s.requests[id] = in
	return in, nil
}

func (s *stubRepo) CountPending(ctx context.Context) (int, error) {
	n := 0
	for _, in := range s.requests {
		if in.Status == interests.StatusPending {
			n++
		}
	}
	return n, nil
}

type decisionNote struct {
	email        string
	organisation string
	status       string
}

type stubNotifier struct {
	sent []decisionNote
	fail error
}

func (s *stubNotifier) NotifyInterestDecision(ctx context.Context, email, organisation, status string) error {
	if s.fail != nil {
		return s.fail
	}
	s.sent = append(s.sent, decisionNote{email: email, organisation: organisation, status: status})
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubmitNormalisesAndStoresPending(t *testing.T) {
	service := interests.NewService(testLogger(), &stubRepo{}, nil)

	created, err := service.Submit(context.Background(), interests.Interest{
		Organisation: "  TechBridge Ltd ",
		ContactName:  " Jordan Okafor ",
		ContactEmail: " Jordan@TechBridge.NG ",
		Message:      " We would like to sponsor hackathons. ",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if created.Status != interests.StatusPending {
		t.Fatalf("expected pending status, got %q", created.Status)
	}
	if created.ContactEmail != "jordan@techbridge.ng" {
		t.Fatalf("expected lowercased email, got %q", created.ContactEmail)
	}
	if created.Organisation != "TechBridge Ltd" {
		t.Fatalf("expected trimmed organisation, got %q", created.Organisation)
	}
}

func TestSubmitRequiresContactDetails(t *testing.T) {
	service := interests.NewService(testLogger(), &stubRepo{}, nil)

	if _, err := service.Submit(context.Background(), interests.Interest{Organisation: "NoContact Inc"}); err == nil {
		t.Fatalf("expected validation error for missing contact details")
	}
}

func TestApproveNotifiesRequester(t *testing.T) {
	repo := &stubRepo{requests: map[int64]interests.Interest{
		3: {ID: 3, Organisation: "TechBridge Ltd", ContactName: "Jordan", ContactEmail: "jordan@techbridge.ng", Status: interests.StatusPending},
	}}
	notifier := &stubNotifier{}
	service := interests.NewService(testLogger(), repo, notifier)
	actor := shared.Identity{ID: 1, Name: "Chair", Role: shared.RoleAdmin}

	decided, err := service.Approve(context.Background(), actor, 3)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if decided.Status != interests.StatusApproved || decided.DecidedBy != 1 {
		t.Fatalf("expected approval stamped with actor, got %+v", decided)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].status != interests.StatusApproved {
		t.Fatalf("expected one decision notification, got %+v", notifier.sent)
	}
}

func TestDecideRejectsSecondDecision(t *testing.T) {
	repo := &stubRepo{requests: map[int64]interests.Interest{
		3: {ID: 3, Organisation: "TechBridge Ltd", ContactEmail: "jordan@techbridge.ng", Status: interests.StatusApproved},
	}}
	notifier := &stubNotifier{}
	service := interests.NewService(testLogger(), repo, notifier)
	actor := shared.Identity{ID: 1, Name: "Chair", Role: shared.RoleAdmin}

	_, err := service.Reject(context.Background(), actor, 3)
	if !errors.Is(err, interests.ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no notification on rejected decision, got %+v", notifier.sent)
	}
}

func TestDecideSucceedsWhenNotifierFails(t *testing.T) {
	repo := &stubRepo{requests: map[int64]interests.Interest{
		3: {ID: 3, Organisation: "TechBridge Ltd", ContactName: "Jordan", ContactEmail: "jordan@techbridge.ng", Status: interests.StatusPending},
	}}
	notifier := &stubNotifier{fail: errors.New("queue unavailable")}
	service := interests.NewService(testLogger(), repo, notifier)
	actor := shared.Identity{ID: 1, Name: "Chair", Role: shared.RoleAdmin}

	decided, err := service.Approve(context.Background(), actor, 3)
	if err != nil {
		t.Fatalf("decision must not surface notifier errors, got %v", err)
	}
	if decided.Status != interests.StatusApproved {
		t.Fatalf("expected approved status despite notifier failure, got %q", decided.Status)
	}
}
