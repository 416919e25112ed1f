package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/evaldesk/evaldesk/modules/evaluation/domain/entities/period"
	"github.com/evaldesk/evaldesk/modules/evaluation/infrastructure/persistence"
)

type mockPeriodRepository struct {
	period.Repository

	order []uuid.UUID
	byID  map[uuid.UUID]*period.Period
}

func newMockPeriodRepository() *mockPeriodRepository {
	return &mockPeriodRepository{byID: make(map[uuid.UUID]*period.Period)}
}

func (m *mockPeriodRepository) add(name string, status period.Status) *period.Period {
	entity := &period.Period{
		ID:        uuid.New(),
		Name:      name,
		StartDate: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
		Status:    status,
	}
	m.byID[entity.ID] = entity
	m.order = append(m.order, entity.ID)
	return entity
}

func (m *mockPeriodRepository) GetAll(ctx context.Context) ([]period.Period, error) {
	out := make([]period.Period, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.byID[id])
	}
	return out, nil
}

func (m *mockPeriodRepository) GetByID(ctx context.Context, id uuid.UUID) (*period.Period, error) {
	entity, ok := m.byID[id]
	if !ok {
		return nil, persistence.ErrPeriodNotFound
	}
	copied := *entity
	return &copied, nil
}

func (m *mockPeriodRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status period.Status) error {
	entity, ok := m.byID[id]
	if !ok {
		return persistence.ErrPeriodNotFound
	}
	entity.Status = status
	return nil
}

func TestPeriodService_Transition_Lifecycle(t *testing.T) {
	repo := newMockPeriodRepository()
	entity := repo.add("2026 Annual Review", period.StatusDraft)
	svc := NewPeriodService(repo, testPublisher())

	// draft -> closed skips activation.
	_, err := svc.Transition(testContext(), entity.ID, period.StatusClosed)
	require.ErrorIs(t, err, ErrPeriodTransition)
	require.Equal(t, period.StatusDraft, repo.byID[entity.ID].Status)

	updated, err := svc.Transition(testContext(), entity.ID, period.StatusActive)
	require.NoError(t, err)
	require.Equal(t, period.StatusActive, updated.Status)

	updated, err = svc.Transition(testContext(), entity.ID, period.StatusClosed)
	require.NoError(t, err)
	require.Equal(t, period.StatusClosed, updated.Status)

	// Closed is terminal.
	_, err = svc.Transition(testContext(), entity.ID, period.StatusActive)
	require.ErrorIs(t, err, ErrPeriodTransition)
}

func TestPeriodService_Transition_UnknownPeriod(t *testing.T) {
	svc := NewPeriodService(newMockPeriodRepository(), testPublisher())

	_, err := svc.Transition(testContext(), uuid.New(), period.StatusActive)
	require.ErrorIs(t, err, persistence.ErrPeriodNotFound)
}

func TestPeriodService_GroupedByStatus_ActiveFirst(t *testing.T) {
	repo := newMockPeriodRepository()
	closed := repo.add("2024 Annual Review", period.StatusClosed)
	draft := repo.add("2027 Annual Review", period.StatusDraft)
	active := repo.add("2026 Annual Review", period.StatusActive)
	secondDraft := repo.add("2027 Mid-Year Review", period.StatusDraft)
	svc := NewPeriodService(repo, testPublisher())

	groups, err := svc.GroupedByStatus(testContext())
	require.NoError(t, err)
	require.Len(t, groups, 3)

	require.Equal(t, period.StatusActive, groups[0].Key)
	require.Equal(t, active.ID, groups[0].Items[0].ID)
	require.Equal(t, period.StatusDraft, groups[1].Key)
	require.Equal(t, period.StatusClosed, groups[2].Key)
	require.Equal(t, closed.ID, groups[2].Items[0].ID)

	// The stable sort keeps same-status periods in repository order.
	require.Equal(t, draft.ID, groups[1].Items[0].ID)
	require.Equal(t, secondDraft.ID, groups[1].Items[1].ID)
}
