package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evaldesk/evaldesk/modules/evaluation/domain/aggregates/assessment"
	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/notify"
	"github.com/evaldesk/evaldesk/pkg/optimistic"
	"github.com/evaldesk/evaldesk/pkg/serrors"
)

var ErrSessionNotFound = serrors.NewError("SESSION_NOT_FOUND", "edit session not found or expired", "")

// AssessmentEditSession wraps one assessment in an optimistic mutator: rating
// edits are visible immediately, committed with the repository's authoritative
// row on success and rolled back on failure.
type AssessmentEditSession struct {
	ID           uuid.UUID
	AssessmentID uuid.UUID

	mutator       *optimistic.Mutator[assessment.Assessment]
	notifications *notify.Memory
	lastTouched   time.Time
}

// Snapshot returns the session's current (possibly provisional) view.
func (s *AssessmentEditSession) Snapshot() assessment.Assessment {
	return s.mutator.Snapshot()
}

// Notifications drains the toast payloads queued since the last call.
func (s *AssessmentEditSession) Notifications() []notify.Notification {
	return s.notifications.Drain()
}

// AssessmentSessionService owns the in-memory edit sessions. Sessions die
// with the server process; all durable state lives behind the repository.
type AssessmentSessionService struct {
	mu          sync.RWMutex
	sessions    map[uuid.UUID]*AssessmentEditSession
	assessments *AssessmentService
	ttl         time.Duration
}

func NewAssessmentSessionService(assessments *AssessmentService, ttl time.Duration) *AssessmentSessionService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &AssessmentSessionService{
		sessions:    make(map[uuid.UUID]*AssessmentEditSession),
		assessments: assessments,
		ttl:         ttl,
	}
}

// Open loads the assessment and starts an edit session seeded with its
// confirmed snapshot.
func (s *AssessmentSessionService) Open(ctx context.Context, assessmentID uuid.UUID) (*AssessmentEditSession, error) {
	entity, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	sink := notify.NewMemory()
	session := &AssessmentEditSession{
		ID:            uuid.New(),
		AssessmentID:  assessmentID,
		notifications: sink,
		lastTouched:   time.Now(),
	}
	var logRollback optimistic.ErrorCallback[assessment.Assessment] = func(err error, restored assessment.Assessment) {
		if logger, ok := composables.TryUseLogger(ctx); ok {
			logger.WithError(err).WithField("assessment", restored.ID).Warn("rating update rolled back")
		}
	}
	session.mutator = optimistic.New(
		*entity,
		optimistic.WithNotifier[assessment.Assessment](sink),
		optimistic.WithMessages[assessment.Assessment]("rating saved", "rating could not be saved"),
		optimistic.OnError[assessment.Assessment](logRollback),
	)

	s.mu.Lock()
	s.pruneLocked()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session, nil
}

func (s *AssessmentSessionService) Get(sessionID uuid.UUID) (*AssessmentEditSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// SetRating applies the rating optimistically and persists it through the
// assessment service. The returned snapshot is authoritative on success and
// the restored pre-edit snapshot on failure.
func (s *AssessmentSessionService) SetRating(ctx context.Context, sessionID, goalID uuid.UUID, score int, comment string) (assessment.Assessment, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return assessment.Assessment{}, err
	}
	s.touch(session)

	return session.mutator.Apply(ctx,
		func(a assessment.Assessment) assessment.Assessment {
			return a.WithRating(goalID, score, comment)
		},
		func(opCtx context.Context) (assessment.Assessment, error) {
			stored, err := s.assessments.UpdateRating(opCtx, session.AssessmentID, goalID, score, comment)
			if err != nil {
				return assessment.Assessment{}, err
			}
			return *stored, nil
		},
	)
}

// Close discards the session. An in-flight save finishes server-side but its
// result is dropped.
func (s *AssessmentSessionService) Close(sessionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		session.mutator.Close()
		delete(s.sessions, sessionID)
	}
}

func (s *AssessmentSessionService) touch(session *AssessmentEditSession) {
	s.mu.Lock()
	session.lastTouched = time.Now()
	s.mu.Unlock()
}

// pruneLocked drops sessions idle past the TTL. Caller holds the write lock.
func (s *AssessmentSessionService) pruneLocked() {
	cutoff := time.Now().Add(-s.ttl)
	for id, session := range s.sessions {
		if session.lastTouched.Before(cutoff) {
			session.mutator.Close()
			delete(s.sessions, id)
		}
	}
}
