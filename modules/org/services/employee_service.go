package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/evaldesk/evaldesk/modules/org/domain/entities/employee"
	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/eventbus"
	"github.com/evaldesk/evaldesk/pkg/projection"
)

type EmployeeService struct {
	repo      employee.Repository
	publisher eventbus.EventBus
}

func NewEmployeeService(repo employee.Repository, publisher eventbus.EventBus) *EmployeeService {
	return &EmployeeService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *EmployeeService) Count(ctx context.Context) (int64, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.repo.Count(txCtx)
	})
}

func (s *EmployeeService) GetPaginated(ctx context.Context, params *employee.FindParams) ([]employee.Employee, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]employee.Employee, error) {
		return s.repo.GetPaginated(txCtx, params)
	})
}

func (s *EmployeeService) GetByID(ctx context.Context, id uuid.UUID) (*employee.Employee, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*employee.Employee, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

// StageBuckets groups the roster by assigned stage. Unassigned employees land
// in the uuid.Nil bucket.
func (s *EmployeeService) StageBuckets(ctx context.Context, entities []employee.Employee) []projection.Group[uuid.UUID, employee.Employee] {
	return projection.GroupBy(entities, func(e employee.Employee) uuid.UUID {
		if e.StageID == nil {
			return uuid.Nil
		}
		return *e.StageID
	})
}

func (s *EmployeeService) Create(ctx context.Context, data *employee.CreateDTO) (*employee.Employee, error) {
	if err := authorizeOrg(ctx, EmployeesAuthzObject, "create"); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*employee.Employee, error) {
		entity, err := data.ToEntity()
		if err != nil {
			return nil, err
		}
		created, err := s.repo.Create(txCtx, entity)
		if err != nil {
			return nil, err
		}
		ev, err := employee.NewCreatedEvent(txCtx, *data, created)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return created, nil
	})
}

func (s *EmployeeService) Update(ctx context.Context, id uuid.UUID, data *employee.UpdateDTO) (*employee.Employee, error) {
	if err := authorizeOrg(ctx, EmployeesAuthzObject, "update"); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*employee.Employee, error) {
		current, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		entity, err := data.ToEntity(id, current)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Update(txCtx, entity); err != nil {
			return nil, err
		}
		ev, err := employee.NewUpdatedEvent(txCtx, entity)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return entity, nil
	})
}

func (s *EmployeeService) Delete(ctx context.Context, id uuid.UUID) (*employee.Employee, error) {
	if err := authorizeOrg(ctx, EmployeesAuthzObject, "delete"); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*employee.Employee, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return nil, err
		}
		ev, err := employee.NewDeletedEvent(txCtx, entity)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return entity, nil
	})
}
