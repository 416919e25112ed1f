package goal

import (
	"context"

	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/types"
)

type CreatedEvent struct {
	Actor  types.User
	Data   CreateDTO
	Result Goal
}

func NewCreatedEvent(ctx context.Context, data CreateDTO, result *Goal) (*CreatedEvent, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	return &CreatedEvent{Actor: actor, Data: data, Result: *result}, nil
}

type UpdatedEvent struct {
	Actor  types.User
	Data   UpdateDTO
	Result Goal
}

func NewUpdatedEvent(ctx context.Context, data UpdateDTO, result *Goal) (*UpdatedEvent, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	return &UpdatedEvent{Actor: actor, Data: data, Result: *result}, nil
}

type DeletedEvent struct {
	Actor  types.User
	Result Goal
}

func NewDeletedEvent(ctx context.Context, result *Goal) (*DeletedEvent, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	return &DeletedEvent{Actor: actor, Result: *result}, nil
}
