package org

import (
	"embed"
	"io/fs"

	"github.com/evaldesk/evaldesk/modules/org/infrastructure/persistence"
	"github.com/evaldesk/evaldesk/modules/org/presentation/controllers"
	"github.com/evaldesk/evaldesk/modules/org/services"
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
	return "org"
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()

	stageRepo := persistence.NewStageRepository()
	employeeRepo := persistence.NewEmployeeRepository()
	unitRepo := persistence.NewUnitRepository()

	app.RegisterServices(
		services.NewStageService(stageRepo, app.EventPublisher()),
		services.NewEmployeeService(employeeRepo, app.EventPublisher()),
		services.NewAssignmentService(employeeRepo, stageRepo, app.EventPublisher(), conf.SessionTTL),
		services.NewHierarchyService(unitRepo, app.EventPublisher(), conf.SessionTTL),
	)

	app.RegisterControllers(
		controllers.NewStagesController(app),
		controllers.NewEmployeesController(app),
		controllers.NewAssignmentsController(app),
		controllers.NewUnitsController(app),
	)

	schema, err := fs.Sub(migrationFiles, "infrastructure/persistence/schema")
	if err != nil {
		return err
	}
	app.Migrations().RegisterSchema(schema)

	app.RegisterNavItems(NavItems...)
	return nil
}
