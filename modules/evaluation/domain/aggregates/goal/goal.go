package goal

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/evaldesk/evaldesk/pkg/serrors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// MaxTotalWeight caps the summed goal weights of one employee in one period.
var MaxTotalWeight = decimal.NewFromInt(100)

var ErrWeightLimitExceeded = serrors.NewError(
	"GOAL_WEIGHT_LIMIT",
	"goal weights for the period may not exceed 100",
	"weight",
)

// Goal is a single evaluation target an employee commits to for a period.
type Goal struct {
	ID          uuid.UUID
	PeriodID    uuid.UUID
	EmployeeID  uuid.UUID
	Category    string
	Title       string
	Description string
	Weight      decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type FindParams struct {
	Limit      int
	Offset     int
	PeriodID   uuid.UUID
	EmployeeID uuid.UUID
	Category   string
}

type CreateDTO struct {
	PeriodID    uuid.UUID `validate:"required"`
	EmployeeID  uuid.UUID `validate:"required"`
	Category    string    `validate:"required"`
	Title       string    `validate:"required"`
	Description string
	Weight      decimal.Decimal
}

func (d *CreateDTO) ToEntity() (*Goal, error) {
	if err := validate.Struct(d); err != nil {
		return nil, err
	}
	if err := validateWeight(d.Weight); err != nil {
		return nil, err
	}
	return &Goal{
		ID:          uuid.New(),
		PeriodID:    d.PeriodID,
		EmployeeID:  d.EmployeeID,
		Category:    d.Category,
		Title:       d.Title,
		Description: d.Description,
		Weight:      d.Weight,
	}, nil
}

type UpdateDTO struct {
	Category    string `validate:"required"`
	Title       string `validate:"required"`
	Description string
	Weight      decimal.Decimal
}

func (d *UpdateDTO) ToEntity(id uuid.UUID, current *Goal) (*Goal, error) {
	if err := validate.Struct(d); err != nil {
		return nil, err
	}
	if err := validateWeight(d.Weight); err != nil {
		return nil, err
	}
	updated := *current
	updated.ID = id
	updated.Category = d.Category
	updated.Title = d.Title
	updated.Description = d.Description
	updated.Weight = d.Weight
	return &updated, nil
}

func validateWeight(w decimal.Decimal) error {
	if w.IsNegative() {
		return serrors.NewError("GOAL_WEIGHT_NEGATIVE", "goal weight may not be negative", "weight")
	}
	if w.GreaterThan(MaxTotalWeight) {
		return ErrWeightLimitExceeded
	}
	return nil
}
