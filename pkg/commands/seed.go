package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/evaldesk/evaldesk/modules"
	evalperiod "github.com/evaldesk/evaldesk/modules/evaluation/domain/entities/period"
	evalservices "github.com/evaldesk/evaldesk/modules/evaluation/services"
	"github.com/evaldesk/evaldesk/modules/org/domain/entities/stage"
	orgservices "github.com/evaldesk/evaldesk/modules/org/services"
	"github.com/evaldesk/evaldesk/pkg/application"
	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/configuration"
	"github.com/evaldesk/evaldesk/pkg/eventbus"
	"github.com/evaldesk/evaldesk/pkg/types"
)

var seedStages = []stage.CreateDTO{
	{Name: "Associate", Description: "Entry level"},
	{Name: "Professional", Description: "Works independently"},
	{Name: "Senior", Description: "Leads projects and mentors"},
	{Name: "Principal", Description: "Sets technical direction", Capacity: 5},
}

func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert baseline stages and an initial evaluation period",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seed(cmd.Context())
		},
	}
}

func seed(ctx context.Context) error {
	conf := configuration.Use()
	logger := conf.Logger()

	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return err
	}
	defer pool.Close()

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app); err != nil {
		return err
	}

	ctx = composables.WithPool(ctx, pool)
	ctx = composables.WithUser(ctx, types.User{ID: uuid.New(), Role: types.RoleAdmin})

	stageService := app.Service(orgservices.StageService{}).(*orgservices.StageService)
	count, err := stageService.Count(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		for i := range seedStages {
			if _, err := stageService.Create(ctx, &seedStages[i]); err != nil {
				return err
			}
		}
		logger.WithField("stages", len(seedStages)).Info("seeded competency ladder")
	}

	periodService := app.Service(evalservices.PeriodService{}).(*evalservices.PeriodService)
	periodCount, err := periodService.Count(ctx)
	if err != nil {
		return err
	}
	if periodCount == 0 {
		now := time.Now()
		if _, err := periodService.Create(ctx, &evalperiod.CreateDTO{
			Name:      now.Format("2006") + " Annual Review",
			StartDate: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, time.UTC),
		}); err != nil {
			return err
		}
		logger.Info("seeded initial evaluation period")
	}

	return nil
}
