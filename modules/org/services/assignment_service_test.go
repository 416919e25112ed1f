package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/evaldesk/evaldesk/modules/org/domain/entities/employee"
	"github.com/evaldesk/evaldesk/modules/org/domain/entities/stage"
	"github.com/evaldesk/evaldesk/modules/org/infrastructure/persistence"
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

type mockEmployeeRepository struct {
	employee.Repository

	byID         map[uuid.UUID]*employee.Employee
	stageUpdates []StageChange
}

func newMockEmployeeRepository(entities ...*employee.Employee) *mockEmployeeRepository {
	byID := make(map[uuid.UUID]*employee.Employee, len(entities))
	for _, e := range entities {
		byID[e.ID] = e
	}
	return &mockEmployeeRepository{byID: byID}
}

func (m *mockEmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*employee.Employee, error) {
	entity, ok := m.byID[id]
	if !ok {
		return nil, persistence.ErrEmployeeNotFound
	}
	copied := *entity
	return &copied, nil
}

func (m *mockEmployeeRepository) UpdateStage(ctx context.Context, id uuid.UUID, stageID *uuid.UUID) error {
	entity, ok := m.byID[id]
	if !ok {
		return persistence.ErrEmployeeNotFound
	}
	entity.StageID = stageID
	m.stageUpdates = append(m.stageUpdates, StageChange{EmployeeID: id, StageID: stageID})
	return nil
}

type mockStageRepository struct {
	stage.Repository

	byID     map[uuid.UUID]*stage.Stage
	assigned map[uuid.UUID]int64
}

func newMockStageRepository(entities ...*stage.Stage) *mockStageRepository {
	byID := make(map[uuid.UUID]*stage.Stage, len(entities))
	for _, e := range entities {
		byID[e.ID] = e
	}
	return &mockStageRepository{byID: byID, assigned: make(map[uuid.UUID]int64)}
}

func (m *mockStageRepository) GetByID(ctx context.Context, id uuid.UUID) (*stage.Stage, error) {
	entity, ok := m.byID[id]
	if !ok {
		return nil, persistence.ErrStageNotFound
	}
	copied := *entity
	return &copied, nil
}

func (m *mockStageRepository) CountAssigned(ctx context.Context, id uuid.UUID) (int64, error) {
	return m.assigned[id], nil
}

func newAssignmentFixture(t *testing.T) (*AssignmentService, *mockEmployeeRepository, *mockStageRepository) {
	t.Helper()
	employees := newMockEmployeeRepository()
	stages := newMockStageRepository()
	return NewAssignmentService(employees, stages, testPublisher(), time.Hour), employees, stages
}

func addEmployee(repo *mockEmployeeRepository) *employee.Employee {
	entity := &employee.Employee{
		ID:        uuid.New(),
		FirstName: "Dana",
		LastName:  "Reyes",
		Email:     "dana.reyes@example.com",
	}
	repo.byID[entity.ID] = entity
	return entity
}

func addStage(repo *mockStageRepository, capacity int) *stage.Stage {
	entity := &stage.Stage{
		ID:       uuid.New(),
		Name:     "Senior",
		Capacity: capacity,
	}
	repo.byID[entity.ID] = entity
	return entity
}

func TestAssignmentService_Record_LastWriteWins(t *testing.T) {
	svc, employees, stages := newAssignmentFixture(t)
	emp := addEmployee(employees)
	first := addStage(stages, 0)
	second := addStage(stages, 0)

	session, err := svc.Open(testContext())
	require.NoError(t, err)

	require.NoError(t, svc.Record(testContext(), session.ID, StageChange{EmployeeID: emp.ID, StageID: &first.ID}))
	require.NoError(t, svc.Record(testContext(), session.ID, StageChange{EmployeeID: emp.ID, StageID: &second.ID}))

	pending := session.Pending()
	require.Len(t, pending, 1)
	require.Equal(t, second.ID, *pending[0].StageID)

	// Nothing persisted until Save.
	require.Empty(t, employees.stageUpdates)
	require.Nil(t, employees.byID[emp.ID].StageID)
}

func TestAssignmentService_Record_ValidatesReferences(t *testing.T) {
	svc, employees, stages := newAssignmentFixture(t)
	emp := addEmployee(employees)

	session, err := svc.Open(testContext())
	require.NoError(t, err)

	unknownStage := uuid.New()
	err = svc.Record(testContext(), session.ID, StageChange{EmployeeID: emp.ID, StageID: &unknownStage})
	require.ErrorIs(t, err, persistence.ErrStageNotFound)

	st := addStage(stages, 0)
	err = svc.Record(testContext(), session.ID, StageChange{EmployeeID: uuid.New(), StageID: &st.ID})
	require.ErrorIs(t, err, persistence.ErrEmployeeNotFound)

	require.Zero(t, session.PendingCount())
}

func TestAssignmentService_Save_PartialFailureRetainsFailed(t *testing.T) {
	svc, employees, stages := newAssignmentFixture(t)
	first := addEmployee(employees)
	second := addEmployee(employees)
	open := addStage(stages, 0)
	full := addStage(stages, 1)
	stages.assigned[full.ID] = 1

	session, err := svc.Open(testContext())
	require.NoError(t, err)
	require.NoError(t, svc.Record(testContext(), session.ID, StageChange{EmployeeID: first.ID, StageID: &open.ID}))
	require.NoError(t, svc.Record(testContext(), session.ID, StageChange{EmployeeID: second.ID, StageID: &full.ID}))

	report, err := svc.Save(testContext(), session.ID)
	require.NoError(t, err)
	require.Equal(t, 1, report.Saved)
	require.Len(t, report.Failed, 1)
	require.Contains(t, report.Failed, second.ID)

	// The successful move landed; the failed one stays buffered for retry.
	require.Equal(t, open.ID, *employees.byID[first.ID].StageID)
	require.Nil(t, employees.byID[second.ID].StageID)

	pending := session.Pending()
	require.Len(t, pending, 1)
	require.Equal(t, second.ID, pending[0].EmployeeID)

	// Freeing a slot lets the retained change save on the next attempt.
	stages.assigned[full.ID] = 0
	report, err = svc.Save(testContext(), session.ID)
	require.NoError(t, err)
	require.Equal(t, 1, report.Saved)
	require.Empty(t, report.Failed)
	require.Zero(t, session.PendingCount())
	require.Equal(t, full.ID, *employees.byID[second.ID].StageID)
}

func TestAssignmentService_Save_FullStageAllowsStaying(t *testing.T) {
	svc, employees, stages := newAssignmentFixture(t)
	emp := addEmployee(employees)
	full := addStage(stages, 1)
	emp.StageID = &full.ID
	stages.assigned[full.ID] = 1

	session, err := svc.Open(testContext())
	require.NoError(t, err)
	require.NoError(t, svc.Record(testContext(), session.ID, StageChange{EmployeeID: emp.ID, StageID: &full.ID}))

	report, err := svc.Save(testContext(), session.ID)
	require.NoError(t, err)
	require.Equal(t, 1, report.Saved)
	require.Empty(t, report.Failed)
}

func TestAssignmentService_Undo_DiscardsEverything(t *testing.T) {
	svc, employees, stages := newAssignmentFixture(t)
	emp := addEmployee(employees)
	st := addStage(stages, 0)

	session, err := svc.Open(testContext())
	require.NoError(t, err)
	require.NoError(t, svc.Record(testContext(), session.ID, StageChange{EmployeeID: emp.ID, StageID: &st.ID}))

	discarded, err := svc.Undo(session.ID)
	require.NoError(t, err)
	require.Equal(t, 1, discarded)
	require.Zero(t, session.PendingCount())
	require.Empty(t, employees.stageUpdates)

	report, err := svc.Save(testContext(), session.ID)
	require.NoError(t, err)
	require.Zero(t, report.Saved)
}

func TestAssignmentService_Get_UnknownSession(t *testing.T) {
	svc, _, _ := newAssignmentFixture(t)

	_, err := svc.Get(uuid.New())
	require.ErrorIs(t, err, ErrAssignmentSessionNotFound)

	err = svc.Record(testContext(), uuid.New(), StageChange{EmployeeID: uuid.New()})
	require.ErrorIs(t, err, ErrAssignmentSessionNotFound)
}
