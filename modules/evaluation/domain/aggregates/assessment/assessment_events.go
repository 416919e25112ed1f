package assessment

import (
	"context"

	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/types"
)

type SubmittedEvent struct {
	Actor  types.User
	Result Assessment
}

func NewSubmittedEvent(ctx context.Context, result *Assessment) (*SubmittedEvent, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	return &SubmittedEvent{Actor: actor, Result: *result}, nil
}

type ReviewedEvent struct {
	Actor  types.User
	Result Assessment
}

func NewReviewedEvent(ctx context.Context, result *Assessment) (*ReviewedEvent, error) {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	return &ReviewedEvent{Actor: actor, Result: *result}, nil
}
