package assessment

import (
	"context"

	"github.com/google/uuid"
)

type FindParams struct {
	Limit    int
	Offset   int
	PeriodID uuid.UUID
	Statuses []Status
}

type Repository interface {
	Count(ctx context.Context) (int64, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]Assessment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Assessment, error)
	GetForEmployee(ctx context.Context, periodID, employeeID uuid.UUID) (*Assessment, error)
	Create(ctx context.Context, entity *Assessment) (*Assessment, error)
	// Update persists the full aggregate, ratings included, and returns the
	// stored entity.
	Update(ctx context.Context, entity *Assessment) (*Assessment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}
