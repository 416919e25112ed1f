package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/evaldesk/evaldesk/modules/evaluation/domain/aggregates/assessment"
	"github.com/evaldesk/evaldesk/pkg/notify"
)

func newSessionService(repo *mockAssessmentRepository) *AssessmentSessionService {
	return NewAssessmentSessionService(NewAssessmentService(repo, testPublisher()), time.Hour)
}

func TestAssessmentSessionService_SetRating_Commits(t *testing.T) {
	entity := draftAssessment(uuid.New())
	repo := newMockAssessmentRepository(entity)
	svc := newSessionService(repo)

	session, err := svc.Open(testContext(), entity.ID)
	require.NoError(t, err)

	goalID := uuid.New()
	snapshot, err := svc.SetRating(testContext(), session.ID, goalID, 5, "exceeded targets")
	require.NoError(t, err)

	rating, ok := snapshot.Rating(goalID)
	require.True(t, ok)
	require.Equal(t, 5, rating.Score)

	// The committed snapshot is what the repository stored, not the local edit.
	require.Len(t, repo.updated, 1)
	require.Equal(t, snapshot.Ratings, session.Snapshot().Ratings)

	drained := session.Notifications()
	require.Len(t, drained, 1)
	require.Equal(t, notify.KindSuccess, drained[0].Kind)
}

func TestAssessmentSessionService_SetRating_RollsBackOnFailure(t *testing.T) {
	entity := draftAssessment(uuid.New())
	goalID := uuid.New()
	*entity = entity.WithRating(goalID, 3, "first pass")
	repo := newMockAssessmentRepository(entity)
	svc := newSessionService(repo)

	session, err := svc.Open(testContext(), entity.ID)
	require.NoError(t, err)

	repo.updateErr = errors.New("connection reset")
	_, err = svc.SetRating(testContext(), session.ID, goalID, 5, "revised")
	require.Error(t, err)

	// The pre-edit rating survives; the failed edit left no trace.
	restored, ok := session.Snapshot().Rating(goalID)
	require.True(t, ok)
	require.Equal(t, 3, restored.Score)
	require.Equal(t, "first pass", restored.Comment)

	drained := session.Notifications()
	require.Len(t, drained, 1)
	require.Equal(t, notify.KindError, drained[0].Kind)

	// The session stays usable: the same edit succeeds once the backend does.
	repo.updateErr = nil
	snapshot, err := svc.SetRating(testContext(), session.ID, goalID, 5, "revised")
	require.NoError(t, err)
	rating, _ := snapshot.Rating(goalID)
	require.Equal(t, 5, rating.Score)
}

func TestAssessmentSessionService_SetRating_InvalidScoreRollsBack(t *testing.T) {
	entity := draftAssessment(uuid.New())
	repo := newMockAssessmentRepository(entity)
	svc := newSessionService(repo)

	session, err := svc.Open(testContext(), entity.ID)
	require.NoError(t, err)

	goalID := uuid.New()
	_, err = svc.SetRating(testContext(), session.ID, goalID, 9, "")
	require.ErrorIs(t, err, assessment.ErrScoreOutOfRange)

	_, ok := session.Snapshot().Rating(goalID)
	require.False(t, ok)
	require.Empty(t, repo.updated)
}

func TestAssessmentSessionService_Close_Discards(t *testing.T) {
	entity := draftAssessment(uuid.New())
	repo := newMockAssessmentRepository(entity)
	svc := newSessionService(repo)

	session, err := svc.Open(testContext(), entity.ID)
	require.NoError(t, err)

	svc.Close(session.ID)

	_, err = svc.Get(session.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.SetRating(testContext(), session.ID, uuid.New(), 4, "")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAssessmentSessionService_Open_UnknownAssessment(t *testing.T) {
	svc := newSessionService(newMockAssessmentRepository())

	_, err := svc.Open(testContext(), uuid.New())
	require.ErrorIs(t, err, assessment.ErrNotFound)
}
