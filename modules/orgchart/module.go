package orgchart

import (
	"embed"

	"github.com/iota-uz/orgchart/modules/orgchart/infrastructure/persistence"
	"github.com/iota-uz/orgchart/modules/orgchart/presentation/controllers"
	"github.com/iota-uz/orgchart/modules/orgchart/services"
	"github.com/iota-uz/orgchart/pkg/application"
)

//go:embed infrastructure/persistence/schema/orgchart-schema.sql
var MigrationFiles embed.FS

// SchemaSQL returns the DDL for the module's tables. The statements are
// idempotent and safe to run on every boot.
func SchemaSQL() ([]byte, error) {
	return MigrationFiles.ReadFile("infrastructure/persistence/schema/orgchart-schema.sql")
}

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.RegisterServices(
		services.NewOrgService(persistence.NewOrgRepository()),
		services.NewDraftService(
			persistence.NewDraftRepository(),
			persistence.NewOrgRepository(),
			app.EventPublisher(),
		),
	)
	app.RegisterControllers(
		controllers.NewOrgChartAPIController(app),
		controllers.NewHealthController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "orgchart"
}
