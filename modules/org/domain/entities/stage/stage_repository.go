package stage

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Count(ctx context.Context) (int64, error)
	GetAll(ctx context.Context) ([]Stage, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Stage, error)
	Create(ctx context.Context, entity *Stage) (*Stage, error)
	Update(ctx context.Context, entity *Stage) error
	UpdatePosition(ctx context.Context, id uuid.UUID, position int) error
	Delete(ctx context.Context, id uuid.UUID) error
	// CountAssigned reports how many employees currently sit on the stage.
	CountAssigned(ctx context.Context, id uuid.UUID) (int64, error)
}
