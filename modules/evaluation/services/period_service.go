package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/evaldesk/evaldesk/modules/evaluation/domain/entities/period"
	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/eventbus"
	"github.com/evaldesk/evaldesk/pkg/projection"
	"github.com/evaldesk/evaldesk/pkg/serrors"
)

var ErrPeriodTransition = serrors.NewError(
	"PERIOD_INVALID_TRANSITION",
	"period status transition is not allowed",
	"status",
)

type PeriodService struct {
	repo      period.Repository
	publisher eventbus.EventBus
}

func NewPeriodService(repo period.Repository, publisher eventbus.EventBus) *PeriodService {
	return &PeriodService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *PeriodService) Count(ctx context.Context) (int64, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.repo.Count(txCtx)
	})
}

func (s *PeriodService) GetAll(ctx context.Context) ([]period.Period, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]period.Period, error) {
		return s.repo.GetAll(txCtx)
	})
}

func (s *PeriodService) GetPaginated(ctx context.Context, params *period.FindParams) ([]period.Period, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]period.Period, error) {
		return s.repo.GetPaginated(txCtx, params)
	})
}

func (s *PeriodService) GetByID(ctx context.Context, id uuid.UUID) (*period.Period, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*period.Period, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

// GroupedByStatus projects all periods into status buckets, active first.
func (s *PeriodService) GroupedByStatus(ctx context.Context) ([]projection.Group[period.Status, period.Period], error) {
	entities, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	order := map[period.Status]int{
		period.StatusActive: 0,
		period.StatusDraft:  1,
		period.StatusClosed: 2,
	}
	sorted := projection.SortStable(entities, func(a, b period.Period) bool {
		return order[a.Status] < order[b.Status]
	})
	return projection.GroupBy(sorted, func(p period.Period) period.Status {
		return p.Status
	}), nil
}

func (s *PeriodService) Create(ctx context.Context, data *period.CreateDTO) (*period.Period, error) {
	if err := authorizeEvaluation(ctx, PeriodsAuthzObject, "create"); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*period.Period, error) {
		entity, err := data.ToEntity()
		if err != nil {
			return nil, err
		}
		created, err := s.repo.Create(txCtx, entity)
		if err != nil {
			return nil, err
		}
		ev, err := period.NewCreatedEvent(txCtx, *data, created)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return created, nil
	})
}

func (s *PeriodService) Update(ctx context.Context, id uuid.UUID, data *period.UpdateDTO) error {
	if err := authorizeEvaluation(ctx, PeriodsAuthzObject, "update"); err != nil {
		return err
	}
	return composables.InTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		entity, err := data.ToEntity(id, current)
		if err != nil {
			return err
		}
		return s.repo.Update(txCtx, entity)
	})
}

// Transition moves a period along its lifecycle.
func (s *PeriodService) Transition(ctx context.Context, id uuid.UUID, next period.Status) (*period.Period, error) {
	if err := authorizeEvaluation(ctx, PeriodsAuthzObject, "update"); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*period.Period, error) {
		current, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if !current.CanTransitionTo(next) {
			return nil, ErrPeriodTransition
		}
		if err := s.repo.UpdateStatus(txCtx, id, next); err != nil {
			return nil, err
		}
		updated, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		ev, err := period.NewStatusChangedEvent(txCtx, updated)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return updated, nil
	})
}

func (s *PeriodService) Delete(ctx context.Context, id uuid.UUID) (*period.Period, error) {
	if err := authorizeEvaluation(ctx, PeriodsAuthzObject, "delete"); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*period.Period, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return nil, err
		}
		ev, err := period.NewDeletedEvent(txCtx, entity)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return entity, nil
	})
}
