package composables

import (
	"context"
	"errors"

	"github.com/talentpipe/crm/modules/core/domain/aggregates/user"
	"github.com/talentpipe/crm/pkg/constants"
)

var (
	ErrNoUser    = errors.New("no user found in context")
	ErrForbidden = errors.New("forbidden")
)

func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, constants.UserKey, u)
}

// UseUser returns the acting user resolved by the auth middleware.
func UseUser(ctx context.Context) (user.User, error) {
	u, ok := ctx.Value(constants.UserKey).(user.User)
	if !ok || u.IsZero() {
		return user.User{}, ErrNoUser
	}
	return u, nil
}

// RequireAdmin returns ErrForbidden unless the acting user has the admin role.
func RequireAdmin(ctx context.Context) error {
	u, err := UseUser(ctx)
	if err != nil {
		return err
	}
	if !u.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
