package goal

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Count(ctx context.Context) (int64, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]Goal, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Goal, error)
	Create(ctx context.Context, entity *Goal) (*Goal, error)
	Update(ctx context.Context, entity *Goal) error
	Delete(ctx context.Context, id uuid.UUID) error
	// SumWeight totals the weights of an employee's goals in a period,
	// excluding the given goal (uuid.Nil excludes nothing).
	SumWeight(ctx context.Context, periodID, employeeID, excludeGoalID uuid.UUID) (decimal.Decimal, error)
}
