package core

import (
	"embed"

	"github.com/talentpipe/crm/modules/core/infrastructure/persistence"
	"github.com/talentpipe/crm/modules/core/services"
	"github.com/talentpipe/crm/pkg/application"
)

//go:embed infrastructure/persistence/schema/core-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles)

	app.RegisterServices(
		services.NewUserService(persistence.NewUserRepository(), app.EventPublisher()),
	)

	return nil
}

func (m *Module) Name() string {
	return "core"
}
