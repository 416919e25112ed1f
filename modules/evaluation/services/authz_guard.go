package services

import (
	"context"

	"github.com/evaldesk/evaldesk/pkg/authz"
)

var (
	PeriodsAuthzObject     = authz.ObjectName("evaluation", "periods")
	GoalsAuthzObject       = authz.ObjectName("evaluation", "goals")
	AssessmentsAuthzObject = authz.ObjectName("evaluation", "assessments")
	ReviewsAuthzObject     = authz.ObjectName("evaluation", "reviews")
)

// authorizeEvaluationFn is swappable so service tests can stub authorization.
var authorizeEvaluationFn = defaultAuthorizeEvaluation

func defaultAuthorizeEvaluation(ctx context.Context, object, action string) error {
	return authz.Authorize(ctx, object, action)
}

func authorizeEvaluation(ctx context.Context, object, action string) error {
	return authorizeEvaluationFn(ctx, object, action)
}
