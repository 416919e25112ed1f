package employee

import (
	"context"

	"github.com/google/uuid"

	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/types"
)

type CreatedEvent struct {
	Actor  types.User
	Data   CreateDTO
	Result Employee
}

func NewCreatedEvent(ctx context.Context, data CreateDTO, result *Employee) (*CreatedEvent, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	return &CreatedEvent{Actor: actor, Data: data, Result: *result}, nil
}

type UpdatedEvent struct {
	Actor  types.User
	Result Employee
}

func NewUpdatedEvent(ctx context.Context, result *Employee) (*UpdatedEvent, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	return &UpdatedEvent{Actor: actor, Result: *result}, nil
}

// StageChangedEvent fires per employee when a staged assignment batch lands.
type StageChangedEvent struct {
	Actor   types.User
	Result  Employee
	StageID *uuid.UUID
}

func NewStageChangedEvent(ctx context.Context, result *Employee, stageID *uuid.UUID) (*StageChangedEvent, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	return &StageChangedEvent{Actor: actor, Result: *result, StageID: stageID}, nil
}

type DeletedEvent struct {
	Actor  types.User
	Result Employee
}

func NewDeletedEvent(ctx context.Context, result *Employee) (*DeletedEvent, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	return &DeletedEvent{Actor: actor, Result: *result}, nil
}
