package unit

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Count(ctx context.Context) (int64, error)
	GetAll(ctx context.Context) ([]Unit, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Unit, error)
	Create(ctx context.Context, entity *Unit) (*Unit, error)
	Rename(ctx context.Context, id uuid.UUID, name string) error
	// Move re-parents a unit; a nil parent makes it a root.
	Move(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}
