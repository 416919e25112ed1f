package period

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft  Status = "draft"
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusClosed:
		return true
	default:
		return false
	}
}

// Period is an evaluation window. Goals, assessments and reviews all hang off
// a period.
type Period struct {
	ID        uuid.UUID
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanTransitionTo enforces the draft -> active -> closed lifecycle.
func (p *Period) CanTransitionTo(next Status) bool {
	switch p.Status {
	case StatusDraft:
		return next == StatusActive
	case StatusActive:
		return next == StatusClosed
	case StatusClosed:
		return false
	default:
		return false
	}
}

type FindParams struct {
	Limit    int
	Offset   int
	Statuses []Status
}

type CreateDTO struct {
	Name      string    `validate:"required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtfield=StartDate"`
}

func (d *CreateDTO) ToEntity() (*Period, error) {
	if err := validate.Struct(d); err != nil {
		return nil, err
	}
	return &Period{
		ID:        uuid.New(),
		Name:      d.Name,
		StartDate: d.StartDate,
		EndDate:   d.EndDate,
		Status:    StatusDraft,
	}, nil
}

type UpdateDTO struct {
	Name      string    `validate:"required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtfield=StartDate"`
}

func (d *UpdateDTO) ToEntity(id uuid.UUID, current *Period) (*Period, error) {
	if err := validate.Struct(d); err != nil {
		return nil, err
	}
	updated := *current
	updated.ID = id
	updated.Name = d.Name
	updated.StartDate = d.StartDate
	updated.EndDate = d.EndDate
	return &updated, nil
}

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown period status %q", s)
	}
	return status, nil
}
