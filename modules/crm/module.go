package crm

import (
	"embed"

	corepersistence "github.com/talentpipe/crm/modules/core/infrastructure/persistence"
	"github.com/talentpipe/crm/modules/crm/infrastructure/persistence"
	"github.com/talentpipe/crm/modules/crm/presentation/controllers"
	"github.com/talentpipe/crm/modules/crm/services"
	"github.com/talentpipe/crm/pkg/application"
)

//go:embed infrastructure/persistence/schema/crm-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles)

	app.RegisterServices(
		services.NewAssignmentService(
			persistence.NewAssignmentRepository(),
			corepersistence.NewUserRepository(),
			app.EventPublisher(),
		),
	)

	app.RegisterControllers(
		controllers.NewAssignmentAPIController(app),
	)

	return nil
}

func (m *Module) Name() string {
	return "crm"
}
