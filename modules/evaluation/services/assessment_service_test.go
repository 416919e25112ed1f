package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/evaldesk/evaldesk/modules/evaluation/domain/aggregates/assessment"
	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/types"
)

type mockAssessmentRepository struct {
	assessment.Repository

	byID          map[uuid.UUID]*assessment.Assessment
	forEmployee   *assessment.Assessment
	created       []*assessment.Assessment
	updated       []*assessment.Assessment
	updateErr     error
	statusUpdates map[uuid.UUID]assessment.Status
}

func newMockAssessmentRepository(entities ...*assessment.Assessment) *mockAssessmentRepository {
	byID := make(map[uuid.UUID]*assessment.Assessment, len(entities))
	for _, e := range entities {
		byID[e.ID] = e
	}
	return &mockAssessmentRepository{
		byID:          byID,
		statusUpdates: make(map[uuid.UUID]assessment.Status),
	}
}

func (m *mockAssessmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*assessment.Assessment, error) {
	entity, ok := m.byID[id]
	if !ok {
		return nil, assessment.ErrNotFound
	}
	copied := *entity
	return &copied, nil
}

func (m *mockAssessmentRepository) GetForEmployee(ctx context.Context, periodID, employeeID uuid.UUID) (*assessment.Assessment, error) {
	if m.forEmployee == nil {
		return nil, assessment.ErrNotFound
	}
	copied := *m.forEmployee
	return &copied, nil
}

func (m *mockAssessmentRepository) Create(ctx context.Context, entity *assessment.Assessment) (*assessment.Assessment, error) {
	stored := *entity
	m.byID[entity.ID] = &stored
	m.created = append(m.created, &stored)
	copied := stored
	return &copied, nil
}

func (m *mockAssessmentRepository) Update(ctx context.Context, entity *assessment.Assessment) (*assessment.Assessment, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	stored := *entity
	m.byID[entity.ID] = &stored
	m.updated = append(m.updated, &stored)
	copied := stored
	return &copied, nil
}

func (m *mockAssessmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status assessment.Status) error {
	if _, ok := m.byID[id]; !ok {
		return assessment.ErrNotFound
	}
	m.byID[id].Status = status
	m.statusUpdates[id] = status
	return nil
}

func draftAssessment(employeeID uuid.UUID) *assessment.Assessment {
	return &assessment.Assessment{
		ID:         uuid.New(),
		PeriodID:   uuid.New(),
		EmployeeID: employeeID,
		Status:     assessment.StatusDraft,
	}
}

func TestAssessmentService_UpdateRating_ScoreRange(t *testing.T) {
	employee := uuid.New()
	entity := draftAssessment(employee)
	repo := newMockAssessmentRepository(entity)
	svc := NewAssessmentService(repo, testPublisher())

	_, err := svc.UpdateRating(testContext(), entity.ID, uuid.New(), 6, "")
	require.ErrorIs(t, err, assessment.ErrScoreOutOfRange)
	require.Empty(t, repo.updated)

	_, err = svc.UpdateRating(testContext(), entity.ID, uuid.New(), 0, "")
	require.ErrorIs(t, err, assessment.ErrScoreOutOfRange)

	goalID := uuid.New()
	stored, err := svc.UpdateRating(testContext(), entity.ID, goalID, 4, "solid quarter")
	require.NoError(t, err)
	rating, ok := stored.Rating(goalID)
	require.True(t, ok)
	require.Equal(t, 4, rating.Score)
	require.Equal(t, "solid quarter", rating.Comment)
}

func TestAssessmentService_UpdateRating_NotEditable(t *testing.T) {
	entity := draftAssessment(uuid.New())
	entity.Status = assessment.StatusSubmitted
	repo := newMockAssessmentRepository(entity)
	svc := NewAssessmentService(repo, testPublisher())

	_, err := svc.UpdateRating(testContext(), entity.ID, uuid.New(), 3, "")
	require.ErrorIs(t, err, assessment.ErrNotEditable)
	require.Empty(t, repo.updated)
}

func TestAssessmentService_UpdateRating_NotOwner(t *testing.T) {
	entity := draftAssessment(uuid.New())
	repo := newMockAssessmentRepository(entity)
	svc := NewAssessmentService(repo, testPublisher())

	ctx := composables.WithTx(context.Background(), stubTx{})
	ctx = composables.WithUser(ctx, types.User{ID: uuid.New(), Role: types.RoleEmployee})

	_, err := svc.UpdateRating(ctx, entity.ID, uuid.New(), 3, "")
	require.ErrorIs(t, err, ErrNotOwner)

	owner := composables.WithTx(context.Background(), stubTx{})
	owner = composables.WithUser(owner, types.User{ID: entity.EmployeeID, Role: types.RoleEmployee})

	_, err = svc.UpdateRating(owner, entity.ID, uuid.New(), 3, "")
	require.NoError(t, err)
}

func TestAssessmentService_Review_RequiresSubmitted(t *testing.T) {
	entity := draftAssessment(uuid.New())
	repo := newMockAssessmentRepository(entity)
	svc := NewAssessmentService(repo, testPublisher())

	_, err := svc.Review(testContext(), entity.ID, ReviewDTO{Decision: DecisionApprove})
	require.ErrorIs(t, err, assessment.ErrNotReviewable)

	entity.Status = assessment.StatusSubmitted
	stored, err := svc.Review(testContext(), entity.ID, ReviewDTO{
		Decision: DecisionReturn,
		Comment:  "please expand the delivery section",
	})
	require.NoError(t, err)
	require.Equal(t, assessment.StatusReturned, stored.Status)
	require.NotNil(t, stored.ReviewerID)
	require.NotNil(t, stored.ReviewedAt)
	require.Equal(t, "please expand the delivery section", stored.ReviewComment)
}

func TestAssessmentService_Review_InvalidDecision(t *testing.T) {
	entity := draftAssessment(uuid.New())
	entity.Status = assessment.StatusSubmitted
	repo := newMockAssessmentRepository(entity)
	svc := NewAssessmentService(repo, testPublisher())

	_, err := svc.Review(testContext(), entity.ID, ReviewDTO{Decision: "escalate"})
	require.Error(t, err)
	require.Empty(t, repo.updated)
}

func TestAssessmentService_BulkSetStatus_PartialFailure(t *testing.T) {
	submitted := draftAssessment(uuid.New())
	submitted.Status = assessment.StatusSubmitted
	draft := draftAssessment(uuid.New())
	repo := newMockAssessmentRepository(submitted, draft)
	svc := NewAssessmentService(repo, testPublisher())

	missing := uuid.New()
	result, err := svc.BulkSetStatus(
		testContext(),
		[]uuid.UUID{submitted.ID, draft.ID, missing},
		assessment.StatusReviewed,
	)
	require.NoError(t, err)
	require.Equal(t, 1, result.SuccessCount)
	require.Equal(t, 2, result.FailureCount)
	require.Len(t, result.Results, 3)

	byID := make(map[uuid.UUID]ItemResult, len(result.Results))
	for _, item := range result.Results {
		byID[item.ID] = item
	}
	require.True(t, byID[submitted.ID].Success)
	require.False(t, byID[draft.ID].Success)
	require.NotEmpty(t, byID[draft.ID].Error)
	require.False(t, byID[missing].Success)

	// The one valid transition landed; the draft was left untouched.
	require.Equal(t, assessment.StatusReviewed, repo.statusUpdates[submitted.ID])
	require.Equal(t, assessment.StatusDraft, repo.byID[draft.ID].Status)
}

func TestAssessmentService_GetOrCreateDraft_ReturnsExisting(t *testing.T) {
	entity := draftAssessment(uuid.New())
	repo := newMockAssessmentRepository(entity)
	repo.forEmployee = entity
	svc := NewAssessmentService(repo, testPublisher())

	got, err := svc.GetOrCreateDraft(testContext(), entity.PeriodID, entity.EmployeeID)
	require.NoError(t, err)
	require.Equal(t, entity.ID, got.ID)
	require.Empty(t, repo.created)
}

func TestAssessmentService_GetOrCreateDraft_CreatesDraft(t *testing.T) {
	repo := newMockAssessmentRepository()
	svc := NewAssessmentService(repo, testPublisher())

	periodID, employeeID := uuid.New(), uuid.New()
	got, err := svc.GetOrCreateDraft(testContext(), periodID, employeeID)
	require.NoError(t, err)
	require.Equal(t, assessment.StatusDraft, got.Status)
	require.Equal(t, periodID, got.PeriodID)
	require.Equal(t, employeeID, got.EmployeeID)
	require.Len(t, repo.created, 1)
}
