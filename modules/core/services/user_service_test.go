package services_test

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentpipe/crm/modules/core/domain/aggregates/user"
	"github.com/talentpipe/crm/modules/core/services"
	"github.com/talentpipe/crm/pkg/composables"
	"github.com/talentpipe/crm/pkg/eventbus"
)

var testTenant = uuid.MustParse("b7e2c9f0-1a2b-4c3d-8e4f-5a6b7c8d9e0f")

type stubTx struct{ pgx.Tx }

type memUserRepo struct {
	users map[string]user.User
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetActive(_ context.Context) ([]user.User, error) {
	out := make([]user.User, 0, len(m.users))
	for _, u := range m.users {
		if u.IsActive() {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUserRepo) Create(_ context.Context, u user.User) (user.User, error) {
	m.users[u.ID()] = u
	return u, nil
}

func (m *memUserRepo) Deactivate(_ context.Context, id string) error {
	u, ok := m.users[id]
	if !ok {
		return user.ErrNotFound
	}
	m.users[id] = u.Deactivated()
	return nil
}

func newService() (*services.UserService, *memUserRepo, eventbus.EventBus) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	repo := &memUserRepo{users: make(map[string]user.User)}
	bus := eventbus.NewEventPublisher(logger)
	return services.NewUserService(repo, bus), repo, bus
}

func testCtx() context.Context {
	ctx := composables.WithTx(context.Background(), stubTx{})
	return composables.WithTenantID(ctx, testTenant)
}

func TestUserService_CreatePublishesEvent(t *testing.T) {
	svc, repo, bus := newService()

	var published *user.CreatedEvent
	bus.Subscribe(func(e *user.CreatedEvent) { published = e })

	created, err := svc.Create(testCtx(), user.New(testTenant, "u-1", "Dilshod Rahimov", "dilshod@example.com", user.RoleUser))
	require.NoError(t, err)
	assert.Equal(t, "u-1", created.ID())
	assert.True(t, created.IsActive())
	require.NotNil(t, published)

	_, ok := repo.users["u-1"]
	assert.True(t, ok)
}

func TestUserService_Deactivate(t *testing.T) {
	svc, repo, bus := newService()
	repo.users["u-1"] = user.New(testTenant, "u-1", "Dilshod Rahimov", "dilshod@example.com", user.RoleUser)

	var published *user.DeactivatedEvent
	bus.Subscribe(func(e *user.DeactivatedEvent) { published = e })

	require.NoError(t, svc.Deactivate(testCtx(), "u-1"))
	assert.False(t, repo.users["u-1"].IsActive())
	require.NotNil(t, published)

	require.ErrorIs(t, svc.Deactivate(testCtx(), "u-missing"), user.ErrNotFound)
	require.ErrorIs(t, svc.Deactivate(testCtx(), "  "), user.ErrNotFound)
}
