package user

import (
	"context"

	"github.com/talentpipe/crm/pkg/serrors"
)

var (
	ErrNotFound = serrors.NewError("USER_NOT_FOUND", "user not found", "")
	ErrInactive = serrors.NewError("USER_INACTIVE", "user is not active", "")
)

type Repository interface {
	// GetByID returns the user regardless of its active flag.
	GetByID(ctx context.Context, id string) (User, error)
	// GetActive returns all active users ordered by full name.
	GetActive(ctx context.Context) ([]User, error)
	Create(ctx context.Context, u User) (User, error)
	Deactivate(ctx context.Context, id string) error
}
