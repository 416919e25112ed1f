package evaluation

import (
	"embed"
	"io/fs"

	"github.com/evaldesk/evaldesk/modules/evaluation/infrastructure/persistence"
	"github.com/evaldesk/evaldesk/modules/evaluation/presentation/controllers"
	"github.com/evaldesk/evaldesk/modules/evaluation/services"
	"github.com/evaldesk/evaldesk/pkg/application"
	"github.com/evaldesk/evaldesk/pkg/configuration"
)

//go:embed infrastructure/persistence/schema/*.sql
var migrationFiles embed.FS

type Module struct{}

func NewModule() application.Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "evaluation"
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()

	periodRepo := persistence.NewPeriodRepository()
	goalRepo := persistence.NewGoalRepository()
	assessmentRepo := persistence.NewAssessmentRepository()

	assessmentService := services.NewAssessmentService(assessmentRepo, app.EventPublisher())
	app.RegisterServices(
		services.NewPeriodService(periodRepo, app.EventPublisher()),
		services.NewGoalService(goalRepo, app.EventPublisher()),
		assessmentService,
		services.NewAssessmentSessionService(assessmentService, conf.SessionTTL),
	)

	app.RegisterControllers(
		controllers.NewPeriodsController(app),
		controllers.NewGoalsController(app),
		controllers.NewAssessmentsController(app),
		controllers.NewSessionsController(app),
	)

	schema, err := fs.Sub(migrationFiles, "infrastructure/persistence/schema")
	if err != nil {
		return err
	}
	app.Migrations().RegisterSchema(schema)

	app.RegisterNavItems(NavItems...)
	return nil
}
