package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/evaldesk/evaldesk/modules/evaluation/domain/aggregates/assessment"
	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/eventbus"
	"github.com/evaldesk/evaldesk/pkg/serrors"
	"github.com/evaldesk/evaldesk/pkg/types"
)

var ErrNotOwner = serrors.NewError("NOT_OWNER", "assessment belongs to another employee", "")

// ReviewDecision is what a supervisor does with a submitted assessment.
type ReviewDecision string

const (
	DecisionApprove ReviewDecision = "approve"
	DecisionReturn  ReviewDecision = "return"
)

type ReviewDTO struct {
	Decision ReviewDecision
	Comment  string
}

// ItemResult is the per-assessment outcome of a bulk status update.
type ItemResult struct {
	ID      uuid.UUID `json:"id"`
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
}

type BulkStatusResult struct {
	Results      []ItemResult `json:"results"`
	SuccessCount int          `json:"successCount"`
	FailureCount int          `json:"failureCount"`
}

type AssessmentService struct {
	repo      assessment.Repository
	publisher eventbus.EventBus
}

func NewAssessmentService(repo assessment.Repository, publisher eventbus.EventBus) *AssessmentService {
	return &AssessmentService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *AssessmentService) GetByID(ctx context.Context, id uuid.UUID) (*assessment.Assessment, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*assessment.Assessment, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

func (s *AssessmentService) GetPaginated(ctx context.Context, params *assessment.FindParams) ([]assessment.Assessment, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]assessment.Assessment, error) {
		return s.repo.GetPaginated(txCtx, params)
	})
}

// GetOrCreateDraft returns the employee's assessment for the period, creating
// an empty draft when none exists yet.
func (s *AssessmentService) GetOrCreateDraft(ctx context.Context, periodID, employeeID uuid.UUID) (*assessment.Assessment, error) {
	if err := authorizeEvaluation(ctx, AssessmentsAuthzObject, "read"); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*assessment.Assessment, error) {
		existing, err := s.repo.GetForEmployee(txCtx, periodID, employeeID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, assessment.ErrNotFound) {
			return nil, err
		}
		return s.repo.Create(txCtx, &assessment.Assessment{
			ID:         uuid.New(),
			PeriodID:   periodID,
			EmployeeID: employeeID,
			Status:     assessment.StatusDraft,
		})
	})
}

// UpdateRating sets one goal's self-rating. Score range and editability are
// checked before anything is written.
func (s *AssessmentService) UpdateRating(ctx context.Context, id, goalID uuid.UUID, score int, comment string) (*assessment.Assessment, error) {
	if err := authorizeEvaluation(ctx, AssessmentsAuthzObject, "update"); err != nil {
		return nil, err
	}
	if !assessment.ValidScore(score) {
		return nil, assessment.ErrScoreOutOfRange
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*assessment.Assessment, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if err := s.ensureOwner(txCtx, entity); err != nil {
			return nil, err
		}
		if !entity.Editable() {
			return nil, assessment.ErrNotEditable
		}
		updated := entity.WithRating(goalID, score, comment)
		return s.repo.Update(txCtx, &updated)
	})
}

func (s *AssessmentService) SetOverallComment(ctx context.Context, id uuid.UUID, comment string) (*assessment.Assessment, error) {
	if err := authorizeEvaluation(ctx, AssessmentsAuthzObject, "update"); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*assessment.Assessment, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if err := s.ensureOwner(txCtx, entity); err != nil {
			return nil, err
		}
		if !entity.Editable() {
			return nil, assessment.ErrNotEditable
		}
		updated := *entity
		updated.OverallComment = comment
		return s.repo.Update(txCtx, &updated)
	})
}

// Submit hands the assessment to the supervisor for review.
func (s *AssessmentService) Submit(ctx context.Context, id uuid.UUID) (*assessment.Assessment, error) {
	if err := authorizeEvaluation(ctx, AssessmentsAuthzObject, "submit"); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*assessment.Assessment, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if err := s.ensureOwner(txCtx, entity); err != nil {
			return nil, err
		}
		if !entity.Editable() {
			return nil, assessment.ErrNotSubmittable
		}
		now := time.Now()
		updated := *entity
		updated.Status = assessment.StatusSubmitted
		updated.SubmittedAt = &now
		stored, err := s.repo.Update(txCtx, &updated)
		if err != nil {
			return nil, err
		}
		ev, err := assessment.NewSubmittedEvent(txCtx, stored)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return stored, nil
	})
}

// Review records the supervisor's decision on a submitted assessment.
func (s *AssessmentService) Review(ctx context.Context, id uuid.UUID, data ReviewDTO) (*assessment.Assessment, error) {
	if err := authorizeEvaluation(ctx, ReviewsAuthzObject, "update"); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*assessment.Assessment, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if entity.Status != assessment.StatusSubmitted {
			return nil, assessment.ErrNotReviewable
		}
		actor, err := composables.UseUser(txCtx)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		updated := *entity
		updated.ReviewerID = &actor.ID
		updated.ReviewComment = data.Comment
		updated.ReviewedAt = &now
		switch data.Decision {
		case DecisionApprove:
			updated.Status = assessment.StatusReviewed
		case DecisionReturn:
			updated.Status = assessment.StatusReturned
		default:
			return nil, serrors.NewError("INVALID_DECISION", "review decision must be approve or return", "decision")
		}
		stored, err := s.repo.Update(txCtx, &updated)
		if err != nil {
			return nil, err
		}
		ev, err := assessment.NewReviewedEvent(txCtx, stored)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return stored, nil
	})
}

// BulkSetStatus applies a status to many assessments, reporting each item's
// outcome. Items fail independently: one invalid transition does not abort
// the rest.
func (s *AssessmentService) BulkSetStatus(ctx context.Context, ids []uuid.UUID, status assessment.Status) (*BulkStatusResult, error) {
	if err := authorizeEvaluation(ctx, ReviewsAuthzObject, "update"); err != nil {
		return nil, err
	}
	result := &BulkStatusResult{Results: make([]ItemResult, 0, len(ids))}
	for _, id := range ids {
		err := composables.InTx(ctx, func(txCtx context.Context) error {
			entity, err := s.repo.GetByID(txCtx, id)
			if err != nil {
				return err
			}
			if entity.Status == status {
				return nil
			}
			if status == assessment.StatusReviewed && entity.Status != assessment.StatusSubmitted {
				return assessment.ErrNotReviewable
			}
			return s.repo.UpdateStatus(txCtx, id, status)
		})
		item := ItemResult{ID: id, Success: err == nil}
		if err != nil {
			item.Error = err.Error()
			result.FailureCount++
		} else {
			result.SuccessCount++
		}
		result.Results = append(result.Results, item)
	}
	return result, nil
}

// ensureOwner allows the owning employee and administrators through.
func (s *AssessmentService) ensureOwner(ctx context.Context, entity *assessment.Assessment) error {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return err
	}
	if actor.Role == types.RoleAdmin {
		return nil
	}
	if actor.ID != entity.EmployeeID {
		return ErrNotOwner
	}
	return nil
}
