package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evaldesk/evaldesk/modules/org/domain/aggregates/unit"
	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/eventbus"
	"github.com/evaldesk/evaldesk/pkg/projection"
	"github.com/evaldesk/evaldesk/pkg/serrors"
	"github.com/evaldesk/evaldesk/pkg/staging"
)

var ErrHierarchySessionNotFound = serrors.NewError(
	"HIERARCHY_SESSION_NOT_FOUND",
	"hierarchy session not found or expired",
	"",
)

// HierarchySession buffers unit edits (create, rename, move) until they are
// saved as one batch or undone. Edits for the same unit coalesce into a
// single change.
type HierarchySession struct {
	ID uuid.UUID

	buffer      *staging.Buffer[uuid.UUID, unit.Change]
	lastTouched time.Time
}

func (s *HierarchySession) Pending() []unit.Change {
	return s.buffer.Changes()
}

func (s *HierarchySession) PendingCount() int {
	return s.buffer.Len()
}

func (s *HierarchySession) record(change unit.Change) {
	for _, existing := range s.buffer.Changes() {
		if existing.UnitID == change.UnitID {
			s.buffer.Record(change.UnitID, existing.Merge(change))
			return
		}
	}
	s.buffer.Record(change.UnitID, change)
}

// HierarchyService owns the staged hierarchy editing sessions. Confirmed tree
// state lives in the unit repository; a session only ever holds the diff.
type HierarchyService struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*HierarchySession
	units     unit.Repository
	publisher eventbus.EventBus
	ttl       time.Duration
}

func NewHierarchyService(units unit.Repository, publisher eventbus.EventBus, ttl time.Duration) *HierarchyService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &HierarchyService{
		sessions:  make(map[uuid.UUID]*HierarchySession),
		units:     units,
		publisher: publisher,
		ttl:       ttl,
	}
}

func (s *HierarchyService) GetAll(ctx context.Context) ([]unit.Unit, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]unit.Unit, error) {
		return s.units.GetAll(txCtx)
	})
}

func (s *HierarchyService) GetByID(ctx context.Context, id uuid.UUID) (*unit.Unit, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*unit.Unit, error) {
		return s.units.GetByID(txCtx, id)
	})
}

func (s *HierarchyService) CreateUnit(ctx context.Context, data *unit.CreateDTO) (*unit.Unit, error) {
	if err := authorizeOrg(ctx, UnitsAuthzObject, "create"); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*unit.Unit, error) {
		entity, err := data.ToEntity()
		if err != nil {
			return nil, err
		}
		if entity.ParentID != nil {
			if _, err := s.units.GetByID(txCtx, *entity.ParentID); err != nil {
				return nil, err
			}
		}
		created, err := s.units.Create(txCtx, entity)
		if err != nil {
			return nil, err
		}
		ev, err := unit.NewCreatedEvent(txCtx, created)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return created, nil
	})
}

func (s *HierarchyService) DeleteUnit(ctx context.Context, id uuid.UUID) (*unit.Unit, error) {
	if err := authorizeOrg(ctx, UnitsAuthzObject, "delete"); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*unit.Unit, error) {
		entity, err := s.units.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if err := s.units.Delete(txCtx, id); err != nil {
			return nil, err
		}
		ev, err := unit.NewDeletedEvent(txCtx, entity)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return entity, nil
	})
}

func (s *HierarchyService) Open(ctx context.Context) (*HierarchySession, error) {
	if err := authorizeOrg(ctx, UnitsAuthzObject, "update"); err != nil {
		return nil, err
	}
	session := &HierarchySession{
		ID:          uuid.New(),
		buffer:      staging.NewBuffer[uuid.UUID, unit.Change](),
		lastTouched: time.Now(),
	}
	s.mu.Lock()
	s.pruneLocked()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session, nil
}

func (s *HierarchyService) Get(sessionID uuid.UUID) (*HierarchySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrHierarchySessionNotFound
	}
	return session, nil
}

// RecordRename buffers a rename for an existing unit.
func (s *HierarchyService) RecordRename(ctx context.Context, sessionID, unitID uuid.UUID, name string) error {
	if name == "" {
		return serrors.NewFieldRequiredError("name")
	}
	session, err := s.Get(sessionID)
	if err != nil {
		return err
	}
	s.touch(session)
	if err := s.ensureUnitKnown(ctx, session, unitID); err != nil {
		return err
	}
	session.record(unit.Change{UnitID: unitID, Name: name})
	return nil
}

// RecordMove buffers a re-parenting. Cycle prevention runs against the staged
// view immediately so an impossible move is rejected at record time, and
// again on save against the then-current tree.
func (s *HierarchyService) RecordMove(ctx context.Context, sessionID, unitID uuid.UUID, newParentID *uuid.UUID) error {
	session, err := s.Get(sessionID)
	if err != nil {
		return err
	}
	s.touch(session)
	if err := s.ensureUnitKnown(ctx, session, unitID); err != nil {
		return err
	}
	if newParentID != nil {
		if err := s.ensureUnitKnown(ctx, session, *newParentID); err != nil {
			return err
		}
	}

	parents, err := s.stagedParents(ctx, session)
	if err != nil {
		return err
	}
	if unit.WouldCreateCycle(parents, unitID, newParentID) {
		return unit.ErrCycle
	}
	session.record(unit.Change{UnitID: unitID, Move: true, NewParentID: newParentID})
	return nil
}

// RecordCreate buffers a brand-new unit. The unit gets its identifier now so
// later renames and moves in the same session can target it.
func (s *HierarchyService) RecordCreate(ctx context.Context, sessionID uuid.UUID, name string, parentID *uuid.UUID) (uuid.UUID, error) {
	if name == "" {
		return uuid.Nil, serrors.NewFieldRequiredError("name")
	}
	session, err := s.Get(sessionID)
	if err != nil {
		return uuid.Nil, err
	}
	s.touch(session)
	if parentID != nil {
		if err := s.ensureUnitKnown(ctx, session, *parentID); err != nil {
			return uuid.Nil, err
		}
	}
	id := uuid.New()
	session.record(unit.Change{UnitID: id, Create: true, Name: name, Move: true, NewParentID: parentID})
	return id, nil
}

// Preview returns the tree as it would look if the session were saved now:
// confirmed units with staged renames, moves and creates applied, nothing
// persisted.
func (s *HierarchyService) Preview(ctx context.Context, sessionID uuid.UUID) ([]unit.Unit, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	entities, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]int, len(entities))
	for i, u := range entities {
		byID[u.ID] = i
	}
	for _, change := range session.Pending() {
		if change.Create {
			entities = append(entities, unit.Unit{
				ID:       change.UnitID,
				Name:     change.Name,
				ParentID: change.NewParentID,
			})
			byID[change.UnitID] = len(entities) - 1
			continue
		}
		i, ok := byID[change.UnitID]
		if !ok {
			continue
		}
		if change.Name != "" {
			entities[i].Name = change.Name
		}
		if change.Move {
			entities[i].ParentID = change.NewParentID
		}
	}
	return entities, nil
}

// ChildrenByParent groups a unit list into parent buckets, roots under
// uuid.Nil, preserving input order.
func (s *HierarchyService) ChildrenByParent(entities []unit.Unit) []projection.Group[uuid.UUID, unit.Unit] {
	return projection.GroupBy(entities, func(u unit.Unit) uuid.UUID {
		if u.ParentID == nil {
			return uuid.Nil
		}
		return *u.ParentID
	})
}

// Save flushes the session as one batch. Each change applies in its own
// transaction; a unit whose move would close a cycle against the now-current
// tree fails alone and stays buffered.
func (s *HierarchyService) Save(ctx context.Context, sessionID uuid.UUID) (staging.SaveReport[uuid.UUID], error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return staging.SaveReport[uuid.UUID]{}, err
	}
	s.touch(session)

	return session.buffer.Save(ctx, func(flushCtx context.Context, changes []unit.Change) (staging.BatchResult[uuid.UUID], error) {
		result := staging.BatchResult[uuid.UUID]{Failed: make(map[uuid.UUID]string)}
		applied := make([]unit.Change, 0, len(changes))
		for _, change := range changes {
			if err := s.applyChange(flushCtx, change); err != nil {
				result.Failed[change.UnitID] = err.Error()
				continue
			}
			applied = append(applied, change)
		}
		if len(applied) > 0 {
			if ev, err := unit.NewHierarchySavedEvent(flushCtx, applied); err == nil {
				s.publisher.Publish(ev)
			}
		}
		if len(result.Failed) == 0 {
			result.Failed = nil
		}
		return result, nil
	})
}

func (s *HierarchyService) applyChange(ctx context.Context, change unit.Change) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		if change.Create {
			_, err := s.units.Create(txCtx, &unit.Unit{
				ID:       change.UnitID,
				Name:     change.Name,
				ParentID: change.NewParentID,
			})
			return err
		}
		if change.Move {
			parents, err := s.currentParents(txCtx)
			if err != nil {
				return err
			}
			if unit.WouldCreateCycle(parents, change.UnitID, change.NewParentID) {
				return unit.ErrCycle
			}
			if err := s.units.Move(txCtx, change.UnitID, change.NewParentID); err != nil {
				return err
			}
		}
		if change.Name != "" {
			if err := s.units.Rename(txCtx, change.UnitID, change.Name); err != nil {
				return err
			}
		}
		return nil
	})
}

// Undo synchronously discards every buffered change and reports how many.
func (s *HierarchyService) Undo(sessionID uuid.UUID) (int, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return 0, err
	}
	s.touch(session)
	return session.buffer.Undo(), nil
}

func (s *HierarchyService) Close(sessionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// ensureUnitKnown accepts units confirmed in the repository and units created
// earlier in the same session, so staged creates can be renamed and moved
// before they are saved.
func (s *HierarchyService) ensureUnitKnown(ctx context.Context, session *HierarchySession, id uuid.UUID) error {
	for _, change := range session.Pending() {
		if change.Create && change.UnitID == id {
			return nil
		}
	}
	_, err := s.GetByID(ctx, id)
	return err
}

// stagedParents builds the parent map with the session's buffered moves and
// creates layered over the confirmed tree.
func (s *HierarchyService) stagedParents(ctx context.Context, session *HierarchySession) (map[uuid.UUID]*uuid.UUID, error) {
	parents, err := s.currentParents(ctx)
	if err != nil {
		return nil, err
	}
	for _, change := range session.Pending() {
		if change.Create || change.Move {
			parents[change.UnitID] = change.NewParentID
		}
	}
	return parents, nil
}

func (s *HierarchyService) currentParents(ctx context.Context) (map[uuid.UUID]*uuid.UUID, error) {
	entities, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	parents := make(map[uuid.UUID]*uuid.UUID, len(entities))
	for _, u := range entities {
		parents[u.ID] = u.ParentID
	}
	return parents, nil
}

func (s *HierarchyService) touch(session *HierarchySession) {
	s.mu.Lock()
	session.lastTouched = time.Now()
	s.mu.Unlock()
}

func (s *HierarchyService) pruneLocked() {
	cutoff := time.Now().Add(-s.ttl)
	for id, session := range s.sessions {
		if session.lastTouched.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
