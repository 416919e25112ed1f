package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/evaldesk/evaldesk/modules/evaluation/domain/aggregates/goal"
	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/eventbus"
	"github.com/evaldesk/evaldesk/pkg/projection"
)

type GoalService struct {
	repo      goal.Repository
	publisher eventbus.EventBus
}

func NewGoalService(repo goal.Repository, publisher eventbus.EventBus) *GoalService {
	return &GoalService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *GoalService) Count(ctx context.Context) (int64, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.repo.Count(txCtx)
	})
}

func (s *GoalService) GetPaginated(ctx context.Context, params *goal.FindParams) ([]goal.Goal, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]goal.Goal, error) {
		return s.repo.GetPaginated(txCtx, params)
	})
}

func (s *GoalService) GetByID(ctx context.Context, id uuid.UUID) (*goal.Goal, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*goal.Goal, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

// GroupedByCategory projects an employee's period goals into category
// buckets, heaviest goals first within each bucket.
func (s *GoalService) GroupedByCategory(ctx context.Context, periodID, employeeID uuid.UUID) ([]projection.Group[string, goal.Goal], error) {
	entities, err := s.GetPaginated(ctx, &goal.FindParams{
		PeriodID:   periodID,
		EmployeeID: employeeID,
		Limit:      1000,
	})
	if err != nil {
		return nil, err
	}
	sorted := projection.SortStable(entities, func(a, b goal.Goal) bool {
		return a.Weight.GreaterThan(b.Weight)
	})
	return projection.GroupBy(sorted, func(g goal.Goal) string {
		return g.Category
	}), nil
}

// Create validates the weight-sum invariant before any mutation is
// attempted: an employee's goals in a period may not total more than 100.
func (s *GoalService) Create(ctx context.Context, data *goal.CreateDTO) (*goal.Goal, error) {
	if err := authorizeEvaluation(ctx, GoalsAuthzObject, "create"); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*goal.Goal, error) {
		entity, err := data.ToEntity()
		if err != nil {
			return nil, err
		}
		total, err := s.repo.SumWeight(txCtx, entity.PeriodID, entity.EmployeeID, uuid.Nil)
		if err != nil {
			return nil, err
		}
		if total.Add(entity.Weight).GreaterThan(goal.MaxTotalWeight) {
			return nil, goal.ErrWeightLimitExceeded
		}
		created, err := s.repo.Create(txCtx, entity)
		if err != nil {
			return nil, err
		}
		ev, err := goal.NewCreatedEvent(txCtx, *data, created)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return created, nil
	})
}

func (s *GoalService) Update(ctx context.Context, id uuid.UUID, data *goal.UpdateDTO) (*goal.Goal, error) {
	if err := authorizeEvaluation(ctx, GoalsAuthzObject, "update"); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*goal.Goal, error) {
		current, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		entity, err := data.ToEntity(id, current)
		if err != nil {
			return nil, err
		}
		total, err := s.repo.SumWeight(txCtx, current.PeriodID, current.EmployeeID, id)
		if err != nil {
			return nil, err
		}
		if total.Add(entity.Weight).GreaterThan(goal.MaxTotalWeight) {
			return nil, goal.ErrWeightLimitExceeded
		}
		if err := s.repo.Update(txCtx, entity); err != nil {
			return nil, err
		}
		ev, err := goal.NewUpdatedEvent(txCtx, *data, entity)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return entity, nil
	})
}

func (s *GoalService) Delete(ctx context.Context, id uuid.UUID) (*goal.Goal, error) {
	if err := authorizeEvaluation(ctx, GoalsAuthzObject, "delete"); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*goal.Goal, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return nil, err
		}
		ev, err := goal.NewDeletedEvent(txCtx, entity)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return entity, nil
	})
}
