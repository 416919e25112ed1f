package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evaldesk/evaldesk/modules/org/domain/entities/employee"
	"github.com/evaldesk/evaldesk/modules/org/domain/entities/stage"
	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/eventbus"
	"github.com/evaldesk/evaldesk/pkg/serrors"
	"github.com/evaldesk/evaldesk/pkg/staging"
)

var (
	ErrAssignmentSessionNotFound = serrors.NewError(
		"ASSIGNMENT_SESSION_NOT_FOUND",
		"assignment session not found or expired",
		"",
	)
	ErrStageFull = serrors.NewError("STAGE_FULL", "stage is full", "stageId")
)

// StageChange is one buffered reassignment: move the employee onto StageID,
// or off any stage when nil.
type StageChange struct {
	EmployeeID uuid.UUID
	StageID    *uuid.UUID
}

// AssignmentSession buffers stage reassignments until they are saved as one
// batch or undone. Recording twice for the same employee keeps only the last
// change.
type AssignmentSession struct {
	ID uuid.UUID

	buffer      *staging.Buffer[uuid.UUID, StageChange]
	lastTouched time.Time
}

func (s *AssignmentSession) Pending() []StageChange {
	return s.buffer.Changes()
}

func (s *AssignmentSession) PendingCount() int {
	return s.buffer.Len()
}

// AssignmentService owns the in-memory assignment sessions and flushes their
// buffers through the employee repository.
type AssignmentService struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*AssignmentSession
	employees employee.Repository
	stages    stage.Repository
	publisher eventbus.EventBus
	ttl       time.Duration
}

func NewAssignmentService(
	employees employee.Repository,
	stages stage.Repository,
	publisher eventbus.EventBus,
	ttl time.Duration,
) *AssignmentService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &AssignmentService{
		sessions:  make(map[uuid.UUID]*AssignmentSession),
		employees: employees,
		stages:    stages,
		publisher: publisher,
		ttl:       ttl,
	}
}

func (s *AssignmentService) Open(ctx context.Context) (*AssignmentSession, error) {
	if err := authorizeOrg(ctx, AssignmentsAuthzObject, "update"); err != nil {
		return nil, err
	}
	session := &AssignmentSession{
		ID:          uuid.New(),
		buffer:      staging.NewBuffer[uuid.UUID, StageChange](),
		lastTouched: time.Now(),
	}
	s.mu.Lock()
	s.pruneLocked()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session, nil
}

func (s *AssignmentService) Get(sessionID uuid.UUID) (*AssignmentSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrAssignmentSessionNotFound
	}
	return session, nil
}

// Record buffers one reassignment. The employee and target stage must exist;
// nothing is persisted until Save.
func (s *AssignmentService) Record(ctx context.Context, sessionID uuid.UUID, change StageChange) error {
	session, err := s.Get(sessionID)
	if err != nil {
		return err
	}
	s.touch(session)

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.employees.GetByID(txCtx, change.EmployeeID); err != nil {
			return err
		}
		if change.StageID != nil {
			if _, err := s.stages.GetByID(txCtx, *change.StageID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	session.buffer.Record(change.EmployeeID, change)
	return nil
}

// Save flushes the session's buffer as one batch. Employees whose move fails
// (stage at capacity, employee deleted meanwhile) stay buffered; the rest are
// cleared.
func (s *AssignmentService) Save(ctx context.Context, sessionID uuid.UUID) (staging.SaveReport[uuid.UUID], error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return staging.SaveReport[uuid.UUID]{}, err
	}
	s.touch(session)

	return session.buffer.Save(ctx, func(flushCtx context.Context, changes []StageChange) (staging.BatchResult[uuid.UUID], error) {
		result := staging.BatchResult[uuid.UUID]{Failed: make(map[uuid.UUID]string)}
		for _, change := range changes {
			if err := s.applyChange(flushCtx, change); err != nil {
				result.Failed[change.EmployeeID] = err.Error()
			}
		}
		if len(result.Failed) == 0 {
			result.Failed = nil
		}
		return result, nil
	})
}

// applyChange moves one employee in its own transaction so a failed move
// never rolls back its batch siblings.
func (s *AssignmentService) applyChange(ctx context.Context, change StageChange) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		entity, err := s.employees.GetByID(txCtx, change.EmployeeID)
		if err != nil {
			return err
		}
		if change.StageID != nil {
			target, err := s.stages.GetByID(txCtx, *change.StageID)
			if err != nil {
				return err
			}
			alreadyOn := entity.StageID != nil && *entity.StageID == target.ID
			if !target.Unbounded() && !alreadyOn {
				assigned, err := s.stages.CountAssigned(txCtx, target.ID)
				if err != nil {
					return err
				}
				if assigned >= int64(target.Capacity) {
					return ErrStageFull
				}
			}
		}
		if err := s.employees.UpdateStage(txCtx, change.EmployeeID, change.StageID); err != nil {
			return err
		}
		entity.StageID = change.StageID
		ev, err := employee.NewStageChangedEvent(txCtx, entity, change.StageID)
		if err != nil {
			return err
		}
		s.publisher.Publish(ev)
		return nil
	})
}

// Undo synchronously discards every buffered change and reports how many.
func (s *AssignmentService) Undo(sessionID uuid.UUID) (int, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return 0, err
	}
	s.touch(session)
	return session.buffer.Undo(), nil
}

func (s *AssignmentService) Close(sessionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *AssignmentService) touch(session *AssignmentSession) {
	s.mu.Lock()
	session.lastTouched = time.Now()
	s.mu.Unlock()
}

// pruneLocked drops sessions idle past the TTL. Caller holds the write lock.
func (s *AssignmentService) pruneLocked() {
	cutoff := time.Now().Add(-s.ttl)
	for id, session := range s.sessions {
		if session.lastTouched.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
