package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/evaldesk/evaldesk/modules/evaluation/domain/aggregates/goal"
	"github.com/evaldesk/evaldesk/pkg/authz"
	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/eventbus"
	"github.com/evaldesk/evaldesk/pkg/types"
)

// stubTx satisfies the transaction requirement of the service layer without
// touching a database; mock repositories never invoke it.
type stubTx struct{ pgx.Tx }

func testContext() context.Context {
	ctx := composables.WithTx(context.Background(), stubTx{})
	return composables.WithUser(ctx, types.User{ID: uuid.New(), Role: types.RoleAdmin})
}

func testPublisher() eventbus.EventBus {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return eventbus.NewEventPublisher(log)
}

type mockGoalRepository struct {
	goal.Repository

	sumWeight  decimal.Decimal
	created    []*goal.Goal
	getByID    func(id uuid.UUID) (*goal.Goal, error)
	updated    []*goal.Goal
	createdErr error
}

func (m *mockGoalRepository) SumWeight(ctx context.Context, periodID, employeeID, excludeGoalID uuid.UUID) (decimal.Decimal, error) {
	return m.sumWeight, nil
}

func (m *mockGoalRepository) Create(ctx context.Context, entity *goal.Goal) (*goal.Goal, error) {
	if m.createdErr != nil {
		return nil, m.createdErr
	}
	m.created = append(m.created, entity)
	return entity, nil
}

func (m *mockGoalRepository) GetByID(ctx context.Context, id uuid.UUID) (*goal.Goal, error) {
	return m.getByID(id)
}

func (m *mockGoalRepository) Update(ctx context.Context, entity *goal.Goal) error {
	m.updated = append(m.updated, entity)
	return nil
}

func validGoalDTO(weight int64) *goal.CreateDTO {
	return &goal.CreateDTO{
		PeriodID:   uuid.New(),
		EmployeeID: uuid.New(),
		Category:   "delivery",
		Title:      "Ship the reporting pipeline",
		Weight:     decimal.NewFromInt(weight),
	}
}

func TestGoalService_Create_WeightLimit(t *testing.T) {
	repo := &mockGoalRepository{sumWeight: decimal.NewFromInt(80)}
	svc := NewGoalService(repo, testPublisher())

	_, err := svc.Create(testContext(), validGoalDTO(30))
	require.ErrorIs(t, err, goal.ErrWeightLimitExceeded)
	require.Empty(t, repo.created, "invariant must be checked before any mutation")

	created, err := svc.Create(testContext(), validGoalDTO(20))
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	require.True(t, created.Weight.Equal(decimal.NewFromInt(20)))
}

func TestGoalService_Create_ValidationBeforeRepo(t *testing.T) {
	repo := &mockGoalRepository{sumWeight: decimal.Zero}
	svc := NewGoalService(repo, testPublisher())

	_, err := svc.Create(testContext(), &goal.CreateDTO{
		PeriodID:   uuid.New(),
		EmployeeID: uuid.New(),
		Weight:     decimal.NewFromInt(10),
	})
	require.Error(t, err)
	require.Empty(t, repo.created)
}

func TestGoalService_Create_AuthzDenied(t *testing.T) {
	original := authorizeEvaluationFn
	authorizeEvaluationFn = func(ctx context.Context, object, action string) error {
		return authz.ErrForbidden
	}
	t.Cleanup(func() { authorizeEvaluationFn = original })

	repo := &mockGoalRepository{sumWeight: decimal.Zero}
	svc := NewGoalService(repo, testPublisher())

	_, err := svc.Create(testContext(), validGoalDTO(10))
	require.ErrorIs(t, err, authz.ErrForbidden)
	require.Empty(t, repo.created)
}

func TestGoalService_Update_WeightLimitExcludesSelf(t *testing.T) {
	existing := &goal.Goal{
		ID:         uuid.New(),
		PeriodID:   uuid.New(),
		EmployeeID: uuid.New(),
		Category:   "delivery",
		Title:      "Old title",
		Weight:     decimal.NewFromInt(40),
	}
	// Other goals sum to 70; raising this goal to 30 keeps the total at 100.
	repo := &mockGoalRepository{
		sumWeight: decimal.NewFromInt(70),
		getByID: func(id uuid.UUID) (*goal.Goal, error) {
			return existing, nil
		},
	}
	svc := NewGoalService(repo, testPublisher())

	_, err := svc.Update(testContext(), existing.ID, &goal.UpdateDTO{
		Category: "delivery",
		Title:    "New title",
		Weight:   decimal.NewFromInt(30),
	})
	require.NoError(t, err)
	require.Len(t, repo.updated, 1)

	_, err = svc.Update(testContext(), existing.ID, &goal.UpdateDTO{
		Category: "delivery",
		Title:    "New title",
		Weight:   decimal.NewFromInt(31),
	})
	require.ErrorIs(t, err, goal.ErrWeightLimitExceeded)
	require.Len(t, repo.updated, 1, "rejected update must not reach the repository")
}
