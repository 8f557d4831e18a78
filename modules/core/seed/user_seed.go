package seed

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/talentpipe/crm/modules/core/domain/aggregates/user"
	"github.com/talentpipe/crm/modules/core/services"
	"github.com/talentpipe/crm/pkg/application"
	"github.com/talentpipe/crm/pkg/composables"
)

const (
	adminID       = "admin"
	adminFullName = "System Administrator"
	adminEmail    = "admin@talentpipe.local"
)

// AdminUser creates the bootstrap admin profile for the tenant so stats and
// orphan reassignment are reachable on a fresh database. Idempotent.
func AdminUser(ctx context.Context, app application.Application, tenantID uuid.UUID) error {
	userService := app.Service(services.UserService{}).(*services.UserService)

	ctx = composables.WithPool(ctx, app.DB())
	ctx = composables.WithTenantID(ctx, tenantID)

	if _, err := userService.GetByID(ctx, adminID); err == nil {
		return nil
	} else if !errors.Is(err, user.ErrNotFound) {
		return errors.Wrap(err, "check admin profile")
	}

	_, err := userService.Create(ctx, user.New(tenantID, adminID, adminFullName, adminEmail, user.RoleAdmin))
	if err != nil {
		return errors.Wrap(err, "create admin profile")
	}
	return nil
}
