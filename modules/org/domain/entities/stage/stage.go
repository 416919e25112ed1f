package stage

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Stage is one competency level in the ordered ladder employees are assigned
// to. Position is the 0-based rank within the ladder.
type Stage struct {
	ID          uuid.UUID
	Name        string
	Description string
	Position    int
	Capacity    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Unbounded reports whether the stage accepts any number of employees.
func (s *Stage) Unbounded() bool {
	return s.Capacity <= 0
}

type CreateDTO struct {
	Name        string `validate:"required"`
	Description string
	Capacity    int `validate:"gte=0"`
}

func (d *CreateDTO) ToEntity(position int) (*Stage, error) {
	if err := validate.Struct(d); err != nil {
		return nil, err
	}
	return &Stage{
		ID:          uuid.New(),
		Name:        d.Name,
		Description: d.Description,
		Position:    position,
		Capacity:    d.Capacity,
	}, nil
}

type UpdateDTO struct {
	Name        string `validate:"required"`
	Description string
	Capacity    int `validate:"gte=0"`
}

func (d *UpdateDTO) ToEntity(id uuid.UUID, current *Stage) (*Stage, error) {
	if err := validate.Struct(d); err != nil {
		return nil, err
	}
	updated := *current
	updated.ID = id
	updated.Name = d.Name
	updated.Description = d.Description
	updated.Capacity = d.Capacity
	return &updated, nil
}
