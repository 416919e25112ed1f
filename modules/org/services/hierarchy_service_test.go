package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/evaldesk/evaldesk/modules/org/domain/aggregates/unit"
)

type mockUnitRepository struct {
	unit.Repository

	order []uuid.UUID
	byID  map[uuid.UUID]*unit.Unit
}

func newMockUnitRepository() *mockUnitRepository {
	return &mockUnitRepository{byID: make(map[uuid.UUID]*unit.Unit)}
}

func (m *mockUnitRepository) add(name string, parentID *uuid.UUID) *unit.Unit {
	entity := &unit.Unit{ID: uuid.New(), Name: name, ParentID: parentID}
	m.byID[entity.ID] = entity
	m.order = append(m.order, entity.ID)
	return entity
}

func (m *mockUnitRepository) GetAll(ctx context.Context) ([]unit.Unit, error) {
	out := make([]unit.Unit, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.byID[id])
	}
	return out, nil
}

func (m *mockUnitRepository) GetByID(ctx context.Context, id uuid.UUID) (*unit.Unit, error) {
	entity, ok := m.byID[id]
	if !ok {
		return nil, unit.ErrNotFound
	}
	copied := *entity
	return &copied, nil
}

func (m *mockUnitRepository) Create(ctx context.Context, entity *unit.Unit) (*unit.Unit, error) {
	stored := *entity
	m.byID[entity.ID] = &stored
	m.order = append(m.order, entity.ID)
	copied := stored
	return &copied, nil
}

func (m *mockUnitRepository) Rename(ctx context.Context, id uuid.UUID, name string) error {
	entity, ok := m.byID[id]
	if !ok {
		return unit.ErrNotFound
	}
	entity.Name = name
	return nil
}

func (m *mockUnitRepository) Move(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) error {
	entity, ok := m.byID[id]
	if !ok {
		return unit.ErrNotFound
	}
	entity.ParentID = parentID
	return nil
}

func newHierarchyFixture() (*HierarchyService, *mockUnitRepository) {
	units := newMockUnitRepository()
	return NewHierarchyService(units, testPublisher(), time.Hour), units
}

// engineering -> platform -> infra, plus a detached ops root.
func seedTree(units *mockUnitRepository) (engineering, platform, infra, ops *unit.Unit) {
	engineering = units.add("Engineering", nil)
	platform = units.add("Platform", &engineering.ID)
	infra = units.add("Infrastructure", &platform.ID)
	ops = units.add("Operations", nil)
	return
}

func TestHierarchyService_RecordMove_RejectsCycles(t *testing.T) {
	svc, units := newHierarchyFixture()
	engineering, platform, infra, ops := seedTree(units)

	session, err := svc.Open(testContext())
	require.NoError(t, err)

	// Moving an ancestor under its own descendant closes a loop.
	err = svc.RecordMove(testContext(), session.ID, engineering.ID, &infra.ID)
	require.ErrorIs(t, err, unit.ErrCycle)

	err = svc.RecordMove(testContext(), session.ID, platform.ID, &platform.ID)
	require.ErrorIs(t, err, unit.ErrCycle)
	require.Zero(t, session.PendingCount())

	// A legal move is buffered, not persisted.
	require.NoError(t, svc.RecordMove(testContext(), session.ID, infra.ID, &ops.ID))
	require.Equal(t, 1, session.PendingCount())
	require.Equal(t, platform.ID, *units.byID[infra.ID].ParentID)
}

func TestHierarchyService_RecordMove_SeesStagedMoves(t *testing.T) {
	svc, units := newHierarchyFixture()
	engineering, _, infra, ops := seedTree(units)

	session, err := svc.Open(testContext())
	require.NoError(t, err)

	// Stage infra under ops; hanging ops below the staged infra would loop
	// through the buffered move even though the confirmed tree is still
	// acyclic.
	require.NoError(t, svc.RecordMove(testContext(), session.ID, infra.ID, &ops.ID))
	err = svc.RecordMove(testContext(), session.ID, ops.ID, &infra.ID)
	require.ErrorIs(t, err, unit.ErrCycle)

	require.NoError(t, svc.RecordMove(testContext(), session.ID, ops.ID, &engineering.ID))
}

func TestHierarchyService_Record_MergesPerUnit(t *testing.T) {
	svc, units := newHierarchyFixture()
	_, platform, _, ops := seedTree(units)

	session, err := svc.Open(testContext())
	require.NoError(t, err)

	require.NoError(t, svc.RecordRename(testContext(), session.ID, platform.ID, "Platform Engineering"))
	require.NoError(t, svc.RecordMove(testContext(), session.ID, platform.ID, &ops.ID))

	pending := session.Pending()
	require.Len(t, pending, 1, "rename and move for one unit coalesce")
	require.Equal(t, "Platform Engineering", pending[0].Name)
	require.True(t, pending[0].Move)
	require.Equal(t, ops.ID, *pending[0].NewParentID)
}

func TestHierarchyService_RecordCreate_SupportsFollowupEdits(t *testing.T) {
	svc, units := newHierarchyFixture()
	engineering, _, _, ops := seedTree(units)

	session, err := svc.Open(testContext())
	require.NoError(t, err)

	id, err := svc.RecordCreate(testContext(), session.ID, "Data", &engineering.ID)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	// The staged unit is addressable before it exists in the repository.
	require.NoError(t, svc.RecordRename(testContext(), session.ID, id, "Data Platform"))
	require.NoError(t, svc.RecordMove(testContext(), session.ID, id, &ops.ID))

	pending := session.Pending()
	require.Len(t, pending, 1)
	require.True(t, pending[0].Create)
	require.Equal(t, "Data Platform", pending[0].Name)
	require.Equal(t, ops.ID, *pending[0].NewParentID)

	report, err := svc.Save(testContext(), session.ID)
	require.NoError(t, err)
	require.Equal(t, 1, report.Saved)
	created := units.byID[id]
	require.NotNil(t, created)
	require.Equal(t, "Data Platform", created.Name)
	require.Equal(t, ops.ID, *created.ParentID)
}

func TestHierarchyService_Preview_AppliesStagedEdits(t *testing.T) {
	svc, units := newHierarchyFixture()
	engineering, platform, infra, ops := seedTree(units)

	session, err := svc.Open(testContext())
	require.NoError(t, err)

	require.NoError(t, svc.RecordRename(testContext(), session.ID, platform.ID, "Platform Engineering"))
	require.NoError(t, svc.RecordMove(testContext(), session.ID, infra.ID, &ops.ID))
	createdID, err := svc.RecordCreate(testContext(), session.ID, "Data", &engineering.ID)
	require.NoError(t, err)

	preview, err := svc.Preview(testContext(), session.ID)
	require.NoError(t, err)
	require.Len(t, preview, 5)

	byID := make(map[uuid.UUID]unit.Unit, len(preview))
	for _, u := range preview {
		byID[u.ID] = u
	}
	require.Equal(t, "Platform Engineering", byID[platform.ID].Name)
	require.Equal(t, ops.ID, *byID[infra.ID].ParentID)
	require.Equal(t, engineering.ID, *byID[createdID].ParentID)

	// Preview persisted nothing.
	require.Equal(t, "Platform", units.byID[platform.ID].Name)
	require.Equal(t, platform.ID, *units.byID[infra.ID].ParentID)
	require.NotContains(t, units.byID, createdID)
}

func TestHierarchyService_Save_CycleFailsAloneAndIsRetained(t *testing.T) {
	svc, units := newHierarchyFixture()
	engineering, platform, infra, ops := seedTree(units)

	session, err := svc.Open(testContext())
	require.NoError(t, err)
	require.NoError(t, svc.RecordMove(testContext(), session.ID, platform.ID, &ops.ID))
	require.NoError(t, svc.RecordMove(testContext(), session.ID, infra.ID, &engineering.ID))

	// The tree changed behind the session's back: ops now sits under infra,
	// so hanging platform below ops would loop
	// platform -> ops -> infra -> platform.
	units.byID[ops.ID].ParentID = &infra.ID

	report, err := svc.Save(testContext(), session.ID)
	require.NoError(t, err)
	require.Equal(t, 1, report.Saved)
	require.Len(t, report.Failed, 1)
	require.Contains(t, report.Failed, platform.ID)

	// The clean move landed; the cyclic one stays buffered.
	require.Equal(t, engineering.ID, *units.byID[infra.ID].ParentID)
	require.Equal(t, engineering.ID, *units.byID[platform.ID].ParentID)
	require.Equal(t, 1, session.PendingCount())
}

func TestHierarchyService_Undo_DiscardsEverything(t *testing.T) {
	svc, units := newHierarchyFixture()
	_, platform, _, ops := seedTree(units)

	session, err := svc.Open(testContext())
	require.NoError(t, err)
	require.NoError(t, svc.RecordRename(testContext(), session.ID, platform.ID, "Renamed"))
	require.NoError(t, svc.RecordMove(testContext(), session.ID, ops.ID, &platform.ID))

	discarded, err := svc.Undo(session.ID)
	require.NoError(t, err)
	require.Equal(t, 2, discarded)
	require.Zero(t, session.PendingCount())

	require.Equal(t, "Platform", units.byID[platform.ID].Name)
	require.Nil(t, units.byID[ops.ID].ParentID)
}

func TestHierarchyService_ChildrenByParent(t *testing.T) {
	svc, units := newHierarchyFixture()
	engineering, platform, infra, ops := seedTree(units)

	entities, err := svc.GetAll(testContext())
	require.NoError(t, err)

	groups := svc.ChildrenByParent(entities)
	require.Len(t, groups, 3)

	// Roots come first because they were recorded first; grouping preserves
	// input order.
	require.Equal(t, uuid.Nil, groups[0].Key)
	require.Len(t, groups[0].Items, 2)
	require.Equal(t, engineering.ID, groups[0].Items[0].ID)
	require.Equal(t, ops.ID, groups[0].Items[1].ID)
	require.Equal(t, engineering.ID, groups[1].Key)
	require.Equal(t, platform.ID, groups[1].Items[0].ID)
	require.Equal(t, platform.ID, groups[2].Key)
	require.Equal(t, infra.ID, groups[2].Items[0].ID)
}
