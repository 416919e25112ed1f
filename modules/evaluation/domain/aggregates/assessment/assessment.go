package assessment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/evaldesk/evaldesk/pkg/serrors"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusReviewed  Status = "reviewed"
	StatusReturned  Status = "returned"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusReviewed, StatusReturned:
		return true
	default:
		return false
	}
}

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown assessment status %q", s)
	}
	return status, nil
}

const (
	MinScore = 1
	MaxScore = 5
)

var (
	ErrNotFound        = serrors.NewError("ASSESSMENT_NOT_FOUND", "assessment not found", "")
	ErrScoreOutOfRange = serrors.NewError("SCORE_OUT_OF_RANGE", "score must be between 1 and 5", "score")
	ErrNotEditable     = serrors.NewError("ASSESSMENT_NOT_EDITABLE", "assessment is not editable in its current status", "status")
	ErrNotSubmittable  = serrors.NewError("ASSESSMENT_NOT_SUBMITTABLE", "assessment cannot be submitted in its current status", "status")
	ErrNotReviewable   = serrors.NewError("ASSESSMENT_NOT_REVIEWABLE", "assessment has not been submitted for review", "status")
)

// Rating is one self-assessed goal score.
type Rating struct {
	GoalID  uuid.UUID
	Score   int
	Comment string
}

// Assessment is the self-assessment an employee files for a period, later
// reviewed by their supervisor. Value semantics: mutations return a copy, the
// stored entity is only replaced by data that round-tripped the repository.
type Assessment struct {
	ID             uuid.UUID
	PeriodID       uuid.UUID
	EmployeeID     uuid.UUID
	Status         Status
	Ratings        []Rating
	OverallComment string
	ReviewerID     *uuid.UUID
	ReviewComment  string
	SubmittedAt    *time.Time
	ReviewedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Editable reports whether the employee may still change ratings.
func (a Assessment) Editable() bool {
	switch a.Status {
	case StatusDraft, StatusReturned:
		return true
	case StatusSubmitted, StatusReviewed:
		return false
	default:
		return false
	}
}

// WithRating returns a copy with the rating for goalID set or replaced. Pure:
// the receiver is never mutated, which makes it usable as an optimistic
// update function.
func (a Assessment) WithRating(goalID uuid.UUID, score int, comment string) Assessment {
	ratings := make([]Rating, 0, len(a.Ratings)+1)
	replaced := false
	for _, r := range a.Ratings {
		if r.GoalID == goalID {
			ratings = append(ratings, Rating{GoalID: goalID, Score: score, Comment: comment})
			replaced = true
			continue
		}
		ratings = append(ratings, r)
	}
	if !replaced {
		ratings = append(ratings, Rating{GoalID: goalID, Score: score, Comment: comment})
	}
	a.Ratings = ratings
	return a
}

func (a Assessment) Rating(goalID uuid.UUID) (Rating, bool) {
	for _, r := range a.Ratings {
		if r.GoalID == goalID {
			return r, true
		}
	}
	return Rating{}, false
}

func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}
