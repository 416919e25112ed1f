package period

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Count(ctx context.Context) (int64, error)
	GetAll(ctx context.Context) ([]Period, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]Period, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Period, error)
	Create(ctx context.Context, entity *Period) (*Period, error)
	Update(ctx context.Context, entity *Period) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error
}
