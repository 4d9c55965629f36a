package users_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bless15/nacos-admin/internal/shared"
	"github.com/bless15/nacos-admin/internal/users"
	_ "github.com/bless15/nacos-admin/testing"
)

type stubRepo struct {
	users       map[int64]users.User
	roleChanges int
	updates     int
}

func (s *stubRepo) List(ctx context.Context) ([]users.User, error) {
	out := make([]users.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *stubRepo) Get(ctx context.Context, id int64) (users.User, error) {
	u, ok := s.users[id]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	return u, nil
}

func (s *stubRepo) Create(ctx context.Context, u users.User, passwordHash string) (users.User, error) {
	if s.users == nil {
		s.users = make(map[int64]users.User)
	}
	u.ID = int64(len(s.users) + 1)
	s.users[u.ID] = u
	return u, nil
}

func (s *stubRepo) Update(ctx context.Context, u users.User) (users.User, error) {
	if _, ok := s.users[u.ID]; !ok {
		return users.User{}, shared.ErrNotFound
	}
	s.updates++
	s.users[u.ID] = u
	return u, nil
}

func (s *stubRepo) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	return nil
}

func (s *stubRepo) SetActive(ctx context.Context, id int64, active bool) (users.User, error) {
	u, ok := s.users[id]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	u.IsActive = active
	s.users[id] = u
	return u, nil
}

func (s *stubRepo) ChangeRole(ctx context.Context, id, actorID int64, role shared.Role, at time.Time) (users.User, error) {
	u, ok := s.users[id]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	s.roleChanges++
	u.Role = role
	s.users[id] = u
	return u, nil
}

func seededRepo() *stubRepo {
	return &stubRepo{users: map[int64]users.User{
		1: {ID: 1, Email: "chair@nacos.test", Name: "Chair", Role: shared.RoleAdmin, IsActive: true},
		2: {ID: 2, Email: "sec@nacos.test", Name: "Secretary", Role: shared.RoleExecutive, IsActive: true},
	}}
}

func TestChangeRoleRejectsSelfDemotion(t *testing.T) {
	repo := seededRepo()
	service := users.NewService(repo)
	admin := shared.Identity{ID: 1, Name: "Chair", Role: shared.RoleAdmin}

	_, err := service.ChangeRole(context.Background(), admin, 1, shared.RoleExecutive)
	require.ErrorIs(t, err, shared.ErrSelfDemotion)
	assert.Zero(t, repo.roleChanges, "store must not be touched on a rejected demotion")
	assert.Equal(t, shared.RoleAdmin, repo.users[1].Role)
}

func TestChangeRoleAllowsSelfNoop(t *testing.T) {
	repo := seededRepo()
	service := users.NewService(repo)
	admin := shared.Identity{ID: 1, Name: "Chair", Role: shared.RoleAdmin}

	updated, err := service.ChangeRole(context.Background(), admin, 1, shared.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, shared.RoleAdmin, updated.Role)
}

func TestChangeRolePromotesOtherAccount(t *testing.T) {
	repo := seededRepo()
	service := users.NewService(repo)
	admin := shared.Identity{ID: 1, Name: "Chair", Role: shared.RoleAdmin}

	updated, err := service.ChangeRole(context.Background(), admin, 2, shared.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, shared.RoleAdmin, updated.Role)
	assert.Equal(t, 1, repo.roleChanges)
}

func TestChangeRoleRejectsUnknownRole(t *testing.T) {
	repo := seededRepo()
	service := users.NewService(repo)
	admin := shared.Identity{ID: 1, Name: "Chair", Role: shared.RoleAdmin}

	_, err := service.ChangeRole(context.Background(), admin, 2, shared.Role("overlord"))
	require.Error(t, err)
	assert.Zero(t, repo.roleChanges)
}

func TestSetActiveRejectsSelfDeactivation(t *testing.T) {
	repo := seededRepo()
	service := users.NewService(repo)
	admin := shared.Identity{ID: 1, Name: "Chair", Role: shared.RoleAdmin}

	_, err := service.SetActive(context.Background(), admin, 1, false)
	require.ErrorIs(t, err, shared.ErrSelfDemotion)
	assert.True(t, repo.users[1].IsActive)

	updated, err := service.SetActive(context.Background(), admin, 2, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}

func TestUpdateRejectsShortPasswordBeforeWrite(t *testing.T) {
	repo := seededRepo()
	service := users.NewService(repo)

	_, err := service.Update(context.Background(), users.User{ID: 2, Name: "Renamed", Email: "sec@nacos.test"}, "short")
	require.Error(t, err)
	assert.Zero(t, repo.updates, "store must not be touched when the password is rejected")
	assert.Equal(t, "Secretary", repo.users[2].Name)
}

func TestCreateRejectsShortPassword(t *testing.T) {
	service := users.NewService(&stubRepo{})

	_, err := service.Create(context.Background(), users.User{Name: "New Exec", Email: "exec@nacos.test", Role: shared.RoleExecutive}, "short")
	require.Error(t, err)
}
