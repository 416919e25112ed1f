package stage

import (
	"context"

	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/types"
)

type CreatedEvent struct {
	Actor  types.User
	Data   CreateDTO
	Result Stage
}

func NewCreatedEvent(ctx context.Context, data CreateDTO, result *Stage) (*CreatedEvent, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	return &CreatedEvent{Actor: actor, Data: data, Result: *result}, nil
}

type UpdatedEvent struct {
	Actor  types.User
	Result Stage
}

func NewUpdatedEvent(ctx context.Context, result *Stage) (*UpdatedEvent, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	return &UpdatedEvent{Actor: actor, Result: *result}, nil
}

// ReorderedEvent carries the full ladder in its new order.
type ReorderedEvent struct {
	Actor  types.User
	Result []Stage
}

func NewReorderedEvent(ctx context.Context, result []Stage) (*ReorderedEvent, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	return &ReorderedEvent{Actor: actor, Result: result}, nil
}

type DeletedEvent struct {
	Actor  types.User
	Result Stage
}

func NewDeletedEvent(ctx context.Context, result *Stage) (*DeletedEvent, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	return &DeletedEvent{Actor: actor, Result: *result}, nil
}
