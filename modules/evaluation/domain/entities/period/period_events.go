package period

import (
	"context"

	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/types"
)

type CreatedEvent struct {
	Actor  types.User
	Data   CreateDTO
	Result Period
}

func NewCreatedEvent(ctx context.Context, data CreateDTO, result *Period) (*CreatedEvent, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	return &CreatedEvent{Actor: actor, Data: data, Result: *result}, nil
}

type StatusChangedEvent struct {
	Actor  types.User
	Result Period
}

func NewStatusChangedEvent(ctx context.Context, result *Period) (*StatusChangedEvent, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	return &StatusChangedEvent{Actor: actor, Result: *result}, nil
}

type DeletedEvent struct {
	Actor  types.User
	Result Period
}

func NewDeletedEvent(ctx context.Context, result *Period) (*DeletedEvent, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	return &DeletedEvent{Actor: actor, Result: *result}, nil
}
