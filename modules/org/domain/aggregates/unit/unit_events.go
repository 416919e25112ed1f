package unit

import (
	"context"

	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/types"
)

type CreatedEvent struct {
	Actor  types.User
	Result Unit
}

func NewCreatedEvent(ctx context.Context, result *Unit) (*CreatedEvent, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	return &CreatedEvent{Actor: actor, Result: *result}, nil
}

// HierarchySavedEvent fires once per flushed hierarchy batch.
type HierarchySavedEvent struct {
	Actor   types.User
	Applied []Change
}

func NewHierarchySavedEvent(ctx context.Context, applied []Change) (*HierarchySavedEvent, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	return &HierarchySavedEvent{Actor: actor, Applied: applied}, nil
}

type DeletedEvent struct {
	Actor  types.User
	Result Unit
}

func NewDeletedEvent(ctx context.Context, result *Unit) (*DeletedEvent, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	return &DeletedEvent{Actor: actor, Result: *result}, nil
}
