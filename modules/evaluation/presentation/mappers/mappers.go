package mappers

import (
	"time"

	"github.com/evaldesk/evaldesk/modules/evaluation/domain/aggregates/assessment"
	"github.com/evaldesk/evaldesk/modules/evaluation/domain/aggregates/goal"
	"github.com/evaldesk/evaldesk/modules/evaluation/domain/entities/period"
	"github.com/evaldesk/evaldesk/modules/evaluation/presentation/viewmodels"
	"github.com/evaldesk/evaldesk/pkg/mapping"
)

const dateFormat = "2006-01-02"

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func PeriodToViewModel(entity *period.Period) *viewmodels.Period {
	return &viewmodels.Period{
		ID:        entity.ID.String(),
		Name:      entity.Name,
		StartDate: entity.StartDate.Format(dateFormat),
		EndDate:   entity.EndDate.Format(dateFormat),
		Status:    string(entity.Status),
		CreatedAt: entity.CreatedAt.Format(time.RFC3339),
		UpdatedAt: entity.UpdatedAt.Format(time.RFC3339),
	}
}

func PeriodsToViewModels(entities []period.Period) []*viewmodels.Period {
	return mapping.MapViewModels(entities, func(p period.Period) *viewmodels.Period {
		return PeriodToViewModel(&p)
	})
}

func GoalToViewModel(entity *goal.Goal) *viewmodels.Goal {
	return &viewmodels.Goal{
		ID:          entity.ID.String(),
		PeriodID:    entity.PeriodID.String(),
		EmployeeID:  entity.EmployeeID.String(),
		Category:    entity.Category,
		Title:       entity.Title,
		Description: entity.Description,
		Weight:      entity.Weight.String(),
		CreatedAt:   entity.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   entity.UpdatedAt.Format(time.RFC3339),
	}
}

func GoalsToViewModels(entities []goal.Goal) []*viewmodels.Goal {
	return mapping.MapViewModels(entities, func(g goal.Goal) *viewmodels.Goal {
		return GoalToViewModel(&g)
	})
}

func RatingToViewModel(r assessment.Rating) *viewmodels.Rating {
	return &viewmodels.Rating{
		GoalID:  r.GoalID.String(),
		Score:   r.Score,
		Comment: r.Comment,
	}
}

func AssessmentToViewModel(entity *assessment.Assessment) *viewmodels.Assessment {
	vm := &viewmodels.Assessment{
		ID:             entity.ID.String(),
		PeriodID:       entity.PeriodID.String(),
		EmployeeID:     entity.EmployeeID.String(),
		Status:         string(entity.Status),
		Ratings:        mapping.MapViewModels(entity.Ratings, RatingToViewModel),
		OverallComment: entity.OverallComment,
		ReviewComment:  entity.ReviewComment,
		SubmittedAt:    formatTimePtr(entity.SubmittedAt),
		ReviewedAt:     formatTimePtr(entity.ReviewedAt),
		CreatedAt:      entity.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      entity.UpdatedAt.Format(time.RFC3339),
	}
	if entity.ReviewerID != nil {
		vm.ReviewerID = entity.ReviewerID.String()
	}
	return vm
}

func AssessmentsToViewModels(entities []assessment.Assessment) []*viewmodels.Assessment {
	return mapping.MapViewModels(entities, func(a assessment.Assessment) *viewmodels.Assessment {
		return AssessmentToViewModel(&a)
	})
}
