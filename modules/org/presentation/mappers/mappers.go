package mappers

import (
	"time"

	"github.com/google/uuid"

	"github.com/evaldesk/evaldesk/modules/org/domain/aggregates/unit"
	"github.com/evaldesk/evaldesk/modules/org/domain/entities/employee"
	"github.com/evaldesk/evaldesk/modules/org/domain/entities/stage"
	"github.com/evaldesk/evaldesk/modules/org/presentation/viewmodels"
	"github.com/evaldesk/evaldesk/modules/org/services"
	"github.com/evaldesk/evaldesk/pkg/mapping"
	"github.com/evaldesk/evaldesk/pkg/staging"
)

func uuidPtrString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func StageToViewModel(entity *stage.Stage) *viewmodels.Stage {
	return &viewmodels.Stage{
		ID:          entity.ID.String(),
		Name:        entity.Name,
		Description: entity.Description,
		Position:    entity.Position,
		Capacity:    entity.Capacity,
		CreatedAt:   entity.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   entity.UpdatedAt.Format(time.RFC3339),
	}
}

func StagesToViewModels(entities []stage.Stage) []*viewmodels.Stage {
	return mapping.MapViewModels(entities, func(s stage.Stage) *viewmodels.Stage {
		return StageToViewModel(&s)
	})
}

func EmployeeToViewModel(entity *employee.Employee) *viewmodels.Employee {
	return &viewmodels.Employee{
		ID:           entity.ID.String(),
		FirstName:    entity.FirstName,
		LastName:     entity.LastName,
		Email:        entity.Email,
		SupervisorID: uuidPtrString(entity.SupervisorID),
		StageID:      uuidPtrString(entity.StageID),
		UnitID:       uuidPtrString(entity.UnitID),
		CreatedAt:    entity.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    entity.UpdatedAt.Format(time.RFC3339),
	}
}

func EmployeesToViewModels(entities []employee.Employee) []*viewmodels.Employee {
	return mapping.MapViewModels(entities, func(e employee.Employee) *viewmodels.Employee {
		return EmployeeToViewModel(&e)
	})
}

func UnitToViewModel(entity *unit.Unit) *viewmodels.Unit {
	vm := &viewmodels.Unit{
		ID:       entity.ID.String(),
		Name:     entity.Name,
		ParentID: uuidPtrString(entity.ParentID),
	}
	if !entity.CreatedAt.IsZero() {
		vm.CreatedAt = entity.CreatedAt.Format(time.RFC3339)
		vm.UpdatedAt = entity.UpdatedAt.Format(time.RFC3339)
	}
	return vm
}

func UnitsToViewModels(entities []unit.Unit) []*viewmodels.Unit {
	return mapping.MapViewModels(entities, func(u unit.Unit) *viewmodels.Unit {
		return UnitToViewModel(&u)
	})
}

// UnitsToTree renders a flat unit list as nested nodes, children in input
// order. Units whose parent is missing from the list surface as roots.
func UnitsToTree(entities []unit.Unit) []*viewmodels.UnitNode {
	nodes := make(map[uuid.UUID]*viewmodels.UnitNode, len(entities))
	for i := range entities {
		nodes[entities[i].ID] = &viewmodels.UnitNode{
			Unit:     UnitToViewModel(&entities[i]),
			Children: []*viewmodels.UnitNode{},
		}
	}
	roots := make([]*viewmodels.UnitNode, 0)
	for i := range entities {
		node := nodes[entities[i].ID]
		if entities[i].ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*entities[i].ParentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots
}

func StageChangeToViewModel(change services.StageChange) *viewmodels.StageChange {
	return &viewmodels.StageChange{
		EmployeeID: change.EmployeeID.String(),
		StageID:    uuidPtrString(change.StageID),
	}
}

func AssignmentSessionToViewModel(session *services.AssignmentSession) *viewmodels.AssignmentSession {
	return &viewmodels.AssignmentSession{
		ID:      session.ID.String(),
		Pending: mapping.MapViewModels(session.Pending(), StageChangeToViewModel),
	}
}

func UnitChangeToViewModel(change unit.Change) *viewmodels.UnitChange {
	return &viewmodels.UnitChange{
		UnitID:   change.UnitID.String(),
		Create:   change.Create,
		Name:     change.Name,
		Move:     change.Move,
		ParentID: uuidPtrString(change.NewParentID),
	}
}

func HierarchySessionToViewModel(session *services.HierarchySession) *viewmodels.HierarchySession {
	return &viewmodels.HierarchySession{
		ID:      session.ID.String(),
		Pending: mapping.MapViewModels(session.Pending(), UnitChangeToViewModel),
	}
}

func SaveReportToViewModel(report staging.SaveReport[uuid.UUID]) *viewmodels.SaveReport {
	vm := &viewmodels.SaveReport{Saved: report.Saved}
	if len(report.Failed) > 0 {
		vm.Failed = make(map[string]string, len(report.Failed))
		for id, reason := range report.Failed {
			vm.Failed[id.String()] = reason
		}
	}
	return vm
}
