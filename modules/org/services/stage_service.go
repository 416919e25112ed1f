package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/evaldesk/evaldesk/modules/org/domain/entities/stage"
	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/eventbus"
	"github.com/evaldesk/evaldesk/pkg/serrors"
)

var (
	ErrStageInUse = serrors.NewError(
		"STAGE_IN_USE",
		"stage still has employees assigned",
		"",
	)
	ErrReorderMismatch = serrors.NewError(
		"STAGE_REORDER_MISMATCH",
		"reorder must list every stage exactly once",
		"ids",
	)
)

type StageService struct {
	repo      stage.Repository
	publisher eventbus.EventBus
}

func NewStageService(repo stage.Repository, publisher eventbus.EventBus) *StageService {
	return &StageService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *StageService) Count(ctx context.Context) (int64, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.repo.Count(txCtx)
	})
}

// GetAll returns the ladder in position order.
func (s *StageService) GetAll(ctx context.Context) ([]stage.Stage, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]stage.Stage, error) {
		return s.repo.GetAll(txCtx)
	})
}

func (s *StageService) GetByID(ctx context.Context, id uuid.UUID) (*stage.Stage, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*stage.Stage, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

// Create appends the new stage at the end of the ladder.
func (s *StageService) Create(ctx context.Context, data *stage.CreateDTO) (*stage.Stage, error) {
	if err := authorizeOrg(ctx, StagesAuthzObject, "create"); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*stage.Stage, error) {
		count, err := s.repo.Count(txCtx)
		if err != nil {
			return nil, err
		}
		entity, err := data.ToEntity(int(count))
		if err != nil {
			return nil, err
		}
		created, err := s.repo.Create(txCtx, entity)
		if err != nil {
			return nil, err
		}
		ev, err := stage.NewCreatedEvent(txCtx, *data, created)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return created, nil
	})
}

func (s *StageService) Update(ctx context.Context, id uuid.UUID, data *stage.UpdateDTO) (*stage.Stage, error) {
	if err := authorizeOrg(ctx, StagesAuthzObject, "update"); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*stage.Stage, error) {
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
		ev, err := stage.NewUpdatedEvent(txCtx, entity)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return entity, nil
	})
}

// Reorder rewrites ladder positions to match ids. The list must be a
// permutation of the current ladder; anything else is rejected before any
// position is written.
func (s *StageService) Reorder(ctx context.Context, ids []uuid.UUID) ([]stage.Stage, error) {
	if err := authorizeOrg(ctx, StagesAuthzObject, "update"); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]stage.Stage, error) {
		current, err := s.repo.GetAll(txCtx)
		if err != nil {
			return nil, err
		}
		if len(ids) != len(current) {
			return nil, ErrReorderMismatch
		}
		known := make(map[uuid.UUID]bool, len(current))
		for _, st := range current {
			known[st.ID] = true
		}
		seen := make(map[uuid.UUID]bool, len(ids))
		for _, id := range ids {
			if !known[id] || seen[id] {
				return nil, ErrReorderMismatch
			}
			seen[id] = true
		}

		for position, id := range ids {
			if err := s.repo.UpdatePosition(txCtx, id, position); err != nil {
				return nil, err
			}
		}
		reordered, err := s.repo.GetAll(txCtx)
		if err != nil {
			return nil, err
		}
		ev, err := stage.NewReorderedEvent(txCtx, reordered)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return reordered, nil
	})
}

// Delete refuses while employees remain assigned to the stage.
func (s *StageService) Delete(ctx context.Context, id uuid.UUID) (*stage.Stage, error) {
	if err := authorizeOrg(ctx, StagesAuthzObject, "delete"); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*stage.Stage, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		assigned, err := s.repo.CountAssigned(txCtx, id)
		if err != nil {
			return nil, err
		}
		if assigned > 0 {
			return nil, ErrStageInUse
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return nil, err
		}
		ev, err := stage.NewDeletedEvent(txCtx, entity)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return entity, nil
	})
}
