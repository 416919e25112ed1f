package employee

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Count(ctx context.Context) (int64, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]Employee, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Employee, error)
	Create(ctx context.Context, entity *Employee) (*Employee, error)
	Update(ctx context.Context, entity *Employee) error
	// UpdateStage moves one employee onto a stage; nil clears the assignment.
	UpdateStage(ctx context.Context, id uuid.UUID, stageID *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}
