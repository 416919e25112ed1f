package employee

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Employee is the minimal roster entry assignments and evaluations hang off.
// SupervisorID and StageID are nil while unassigned.
type Employee struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	Email        string
	SupervisorID *uuid.UUID
	StageID      *uuid.UUID
	UnitID       *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

type FindParams struct {
	Limit        int
	Offset       int
	StageID      uuid.UUID
	UnitID       uuid.UUID
	SupervisorID uuid.UUID
}

type CreateDTO struct {
	FirstName    string `validate:"required"`
	LastName     string `validate:"required"`
	Email        string `validate:"required,email"`
	SupervisorID *uuid.UUID
	UnitID       *uuid.UUID
}

func (d *CreateDTO) ToEntity() (*Employee, error) {
	if err := validate.Struct(d); err != nil {
		return nil, err
	}
	return &Employee{
		ID:           uuid.New(),
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		SupervisorID: d.SupervisorID,
		UnitID:       d.UnitID,
	}, nil
}

type UpdateDTO struct {
	FirstName    string `validate:"required"`
	LastName     string `validate:"required"`
	Email        string `validate:"required,email"`
	SupervisorID *uuid.UUID
	UnitID       *uuid.UUID
}

func (d *UpdateDTO) ToEntity(id uuid.UUID, current *Employee) (*Employee, error) {
	if err := validate.Struct(d); err != nil {
		return nil, err
	}
	updated := *current
	updated.ID = id
	updated.FirstName = d.FirstName
	updated.LastName = d.LastName
	updated.Email = d.Email
	updated.SupervisorID = d.SupervisorID
	updated.UnitID = d.UnitID
	return &updated, nil
}
