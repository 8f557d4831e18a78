package services

import (
	"context"
	"strings"

	"github.com/talentpipe/crm/modules/core/domain/aggregates/user"
	"github.com/talentpipe/crm/pkg/composables"
	"github.com/talentpipe/crm/pkg/eventbus"
)

type UserService struct {
	repo      user.Repository
	publisher eventbus.EventBus
}

func NewUserService(repo user.Repository, publisher eventbus.EventBus) *UserService {
	return &UserService{repo: repo, publisher: publisher}
}

func (s *UserService) GetByID(ctx context.Context, id string) (user.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetActive returns the users eligible as assignment targets.
func (s *UserService) GetActive(ctx context.Context) ([]user.User, error) {
	return s.repo.GetActive(ctx)
}

func (s *UserService) Create(ctx context.Context, data user.User) (user.User, error) {
	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (user.User, error) {
		return s.repo.Create(txCtx, data)
	})
	if err != nil {
		return user.User{}, err
	}
	s.publisher.Publish(user.NewCreatedEvent(ctx, created))
	return created, nil
}

// Deactivate marks the user inactive. The caller is expected to follow up
// with AssignmentService.ReassignOrphaned so owned records do not dangle.
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return user.ErrNotFound
	}
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Deactivate(txCtx, id)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish(user.NewDeactivatedEvent(ctx, id))
	return nil
}
