package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/evaldesk/evaldesk/modules/org/domain/entities/stage"
)

type reorderStageRepository struct {
	*mockStageRepository

	order     []uuid.UUID
	positions map[uuid.UUID]int
	deleted   []uuid.UUID
}

func newReorderStageRepository(names ...string) *reorderStageRepository {
	repo := &reorderStageRepository{
		mockStageRepository: newMockStageRepository(),
		positions:           make(map[uuid.UUID]int),
	}
	for i, name := range names {
		entity := &stage.Stage{ID: uuid.New(), Name: name, Position: i}
		repo.byID[entity.ID] = entity
		repo.order = append(repo.order, entity.ID)
		repo.positions[entity.ID] = i
	}
	return repo
}

func (m *reorderStageRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(m.order)), nil
}

func (m *reorderStageRepository) Create(ctx context.Context, entity *stage.Stage) (*stage.Stage, error) {
	stored := *entity
	m.byID[entity.ID] = &stored
	m.order = append(m.order, entity.ID)
	m.positions[entity.ID] = entity.Position
	copied := stored
	return &copied, nil
}

func (m *reorderStageRepository) GetAll(ctx context.Context) ([]stage.Stage, error) {
	out := make([]stage.Stage, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.byID[id])
	}
	return out, nil
}

func (m *reorderStageRepository) UpdatePosition(ctx context.Context, id uuid.UUID, position int) error {
	m.positions[id] = position
	m.byID[id].Position = position
	return nil
}

func (m *reorderStageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.byID, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func TestStageService_Reorder_RequiresPermutation(t *testing.T) {
	repo := newReorderStageRepository("Associate", "Professional", "Senior")
	svc := NewStageService(repo, testPublisher())
	a, b, c := repo.order[0], repo.order[1], repo.order[2]

	_, err := svc.Reorder(testContext(), []uuid.UUID{a, b})
	require.ErrorIs(t, err, ErrReorderMismatch)

	_, err = svc.Reorder(testContext(), []uuid.UUID{a, b, uuid.New()})
	require.ErrorIs(t, err, ErrReorderMismatch)

	_, err = svc.Reorder(testContext(), []uuid.UUID{a, b, b})
	require.ErrorIs(t, err, ErrReorderMismatch)

	// Rejected reorders write nothing.
	require.Equal(t, 0, repo.positions[a])
	require.Equal(t, 1, repo.positions[b])
	require.Equal(t, 2, repo.positions[c])

	_, err = svc.Reorder(testContext(), []uuid.UUID{c, a, b})
	require.NoError(t, err)
	require.Equal(t, 0, repo.positions[c])
	require.Equal(t, 1, repo.positions[a])
	require.Equal(t, 2, repo.positions[b])
}

func TestStageService_Delete_GuardsAssignedEmployees(t *testing.T) {
	repo := newReorderStageRepository("Associate")
	svc := NewStageService(repo, testPublisher())
	id := repo.order[0]

	repo.assigned[id] = 2
	_, err := svc.Delete(testContext(), id)
	require.ErrorIs(t, err, ErrStageInUse)
	require.Empty(t, repo.deleted)

	repo.assigned[id] = 0
	deleted, err := svc.Delete(testContext(), id)
	require.NoError(t, err)
	require.Equal(t, id, deleted.ID)
	require.Equal(t, []uuid.UUID{id}, repo.deleted)
}

func TestStageService_Create_AppendsAtEnd(t *testing.T) {
	repo := newReorderStageRepository("Associate", "Professional")
	svc := NewStageService(repo, testPublisher())

	created, err := svc.Create(testContext(), &stage.CreateDTO{Name: "Senior"})
	require.NoError(t, err)
	require.Equal(t, 2, created.Position)
}
