package unit

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/evaldesk/evaldesk/pkg/serrors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var (
	ErrNotFound = serrors.NewError("UNIT_NOT_FOUND", "org unit not found", "")
	ErrCycle    = serrors.NewError("UNIT_CYCLE", "move would create a cycle in the hierarchy", "parentId")
)

// Unit is one node of the org hierarchy. A nil ParentID marks a root.
type Unit struct {
	ID        uuid.UUID
	Name      string
	ParentID  *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateDTO struct {
	Name     string `validate:"required"`
	ParentID *uuid.UUID
}

func (d *CreateDTO) ToEntity() (*Unit, error) {
	if err := validate.Struct(d); err != nil {
		return nil, err
	}
	return &Unit{
		ID:       uuid.New(),
		Name:     d.Name,
		ParentID: d.ParentID,
	}, nil
}

// Change is one buffered hierarchy edit targeting a unit. Fields are partial:
// a zero Name keeps the current name, Move false keeps the current parent.
// Merge folds a later edit for the same unit into an earlier one so the edit
// buffer holds a single coalesced change per unit.
type Change struct {
	UnitID uuid.UUID
	Create bool
	Name   string
	Move   bool
	// NewParentID is only meaningful when Move is set; nil moves to root.
	NewParentID *uuid.UUID
}

func (c Change) Merge(next Change) Change {
	merged := c
	if next.Name != "" {
		merged.Name = next.Name
	}
	if next.Move {
		merged.Move = true
		merged.NewParentID = next.NewParentID
	}
	return merged
}

// WouldCreateCycle reports whether re-parenting id under newParentID closes a
// loop. parents maps every unit to its (possibly staged) parent.
func WouldCreateCycle(parents map[uuid.UUID]*uuid.UUID, id uuid.UUID, newParentID *uuid.UUID) bool {
	seen := make(map[uuid.UUID]bool, len(parents))
	for cursor := newParentID; cursor != nil; {
		if *cursor == id {
			return true
		}
		if seen[*cursor] {
			// Pre-existing loop in the input; refuse the move.
			return true
		}
		seen[*cursor] = true
		cursor = parents[*cursor]
	}
	return false
}
