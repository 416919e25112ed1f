package commands

import (
	"github.com/spf13/cobra"

	"github.com/evaldesk/evaldesk/modules"
	"github.com/evaldesk/evaldesk/pkg/application"
	"github.com/evaldesk/evaldesk/pkg/configuration"
	"github.com/evaldesk/evaldesk/pkg/eventbus"
)

func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply all pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			logger := conf.Logger()

			// No pool: migrations run over database/sql with the lib/pq
			// driver, so module registration only collects schemas here.
			app := application.New(&application.ApplicationOptions{
				EventBus: eventbus.NewEventPublisher(logger),
				Logger:   logger,
			})
			if err := modules.Load(app); err != nil {
				return err
			}

			logger.Info("applying migrations")
			if err := app.Migrations().Apply(cmd.Context(), conf.Database.Opts); err != nil {
				return err
			}
			logger.Info("migrations applied")
			return nil
		},
	}
}
