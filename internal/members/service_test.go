package members_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bless15/nacos-admin/internal/members"
	"github.com/bless15/nacos-admin/internal/shared"
	_ "github.com/bless15/nacos-admin/testing"
)

type stubRepo struct {
	members map[int64]members.Member
}

func (s *stubRepo) List(ctx context.Context, filters members.ListFilters) ([]members.Member, int, error) {
	out := make([]members.Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, m)
	}
	return out, len(out), nil
}

func (s *stubRepo) Get(ctx context.Context, id int64) (members.Member, error) {
	m, ok := s.members[id]
	if !ok {
		return members.Member{}, shared.ErrNotFound
	}
	return m, nil
}

func (s *stubRepo) Create(ctx context.Context, m members.Member) (members.Member, error) {
	if s.members == nil {
		s.members = make(map[int64]members.Member)
	}
	m.ID = int64(len(s.members) + 1)
	s.members[m.ID] = m
	return m, nil
}

func (s *stubRepo) Update(ctx context.Context, m members.Member) (members.Member, error) {
	if _, ok := s.members[m.ID]; !ok {
		return members.Member{}, shared.ErrNotFound
	}
	s.members[m.ID] = m
	return m, nil
}

func (s *stubRepo) Delete(ctx context.Context, id int64) error {
	delete(s.members, id)
	return nil
}

func (s *stubRepo) Approve(ctx context.Context, id, approverID int64, at time.Time) (members.Member, error) {
	m, ok := s.members[id]
	if !ok {
		return members.Member{}, shared.ErrNotFound
	}
	m.Approved = true
	m.ApprovedBy = approverID
	m.ApprovedAt = at
	s.members[id] = m
	return m, nil
}

func (s *stubRepo) Count(ctx context.Context) (int, int, error) {
	pending := 0
	for _, m := range s.members {
		if !m.Approved {
			pending++
		}
	}
	return len(s.members), pending, nil
}

type capturedNotification struct {
	email    string
	fullName string
}

type stubNotifier struct {
	sent []capturedNotification
	fail error
}

func (s *stubNotifier) NotifyMemberApproved(ctx context.Context, email, fullName string) error {
	if s.fail != nil {
		return s.fail
	}
	s.sent = append(s.sent, capturedNotification{email: email, fullName: fullName})
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateCanonicalisesFields(t *testing.T) {
	service := members.NewService(testLogger(), &stubRepo{}, nil)

	created, err := service.Create(context.Background(), members.Member{
		FullName:     "  ada lovelace ",
		Email:        " Ada@Student.Edu.NG ",
		MatricNumber: " cs/2021/014 ",
		Level:        "300",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.FullName != "Ada Lovelace" {
		t.Fatalf("expected title-cased name, got %q", created.FullName)
	}
	if created.Email != "ada@student.edu.ng" {
		t.Fatalf("expected lowercased email, got %q", created.Email)
	}
	if created.MatricNumber != "CS/2021/014" {
		t.Fatalf("expected uppercased matric number, got %q", created.MatricNumber)
	}
}

func TestCreateRequiresCoreFields(t *testing.T) {
	service := members.NewService(testLogger(), &stubRepo{}, nil)

	if _, err := service.Create(context.Background(), members.Member{FullName: "No Email", MatricNumber: "CS/2021/001"}); err == nil {
		t.Fatalf("expected validation error for missing email")
	}
}

func TestApproveNotifiesMember(t *testing.T) {
	repo := &stubRepo{members: map[int64]members.Member{
		5: {ID: 5, FullName: "Grace Hopper", Email: "grace@student.edu.ng", MatricNumber: "CS/2020/002"},
	}}
	notifier := &stubNotifier{}
	service := members.NewService(testLogger(), repo, notifier)
	actor := shared.Identity{ID: 1, Name: "Chair", Role: shared.RoleAdmin}

	approved, err := service.Approve(context.Background(), actor, 5)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !approved.Approved || approved.ApprovedBy != 1 {
		t.Fatalf("expected approval stamped with actor, got %+v", approved)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].email != "grace@student.edu.ng" {
		t.Fatalf("expected one notification to the member, got %+v", notifier.sent)
	}
}

func TestApproveIsIdempotentPerMember(t *testing.T) {
	repo := &stubRepo{members: map[int64]members.Member{
		5: {ID: 5, FullName: "Grace Hopper", Email: "grace@student.edu.ng", MatricNumber: "CS/2020/002", Approved: true},
	}}
	notifier := &stubNotifier{}
	service := members.NewService(testLogger(), repo, notifier)
	actor := shared.Identity{ID: 1, Name: "Chair", Role: shared.RoleAdmin}

	_, err := service.Approve(context.Background(), actor, 5)
	if !errors.Is(err, members.ErrAlreadyApproved) {
		t.Fatalf("expected ErrAlreadyApproved, got %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no duplicate notification, got %+v", notifier.sent)
	}
}

func TestApproveSucceedsWhenNotifierFails(t *testing.T) {
	repo := &stubRepo{members: map[int64]members.Member{
		5: {ID: 5, FullName: "Grace Hopper", Email: "grace@student.edu.ng", MatricNumber: "CS/2020/002"},
	}}
	notifier := &stubNotifier{fail: errors.New("queue unavailable")}
	service := members.NewService(testLogger(), repo, notifier)
	actor := shared.Identity{ID: 1, Name: "Chair", Role: shared.RoleAdmin}

	approved, err := service.Approve(context.Background(), actor, 5)
	if err != nil {
		t.Fatalf("approve must not surface notifier errors, got %v", err)
	}
	if !approved.Approved {
		t.Fatalf("expected member approved despite notifier failure")
	}
}
