package evaluation

import (
	"github.com/evaldesk/evaldesk/modules/evaluation/services"
	"github.com/evaldesk/evaldesk/pkg/types"
)

var PeriodsLink = types.NavigationItem{
	Name:        "Evaluation Periods",
	Href:        "/evaluation/periods",
	AuthzObject: services.PeriodsAuthzObject,
	AuthzAction: "read",
}

var GoalsLink = types.NavigationItem{
	Name:        "Goals",
	Href:        "/evaluation/goals",
	AuthzObject: services.GoalsAuthzObject,
	AuthzAction: "read",
}

var AssessmentsLink = types.NavigationItem{
	Name:        "Self-Assessments",
	Href:        "/evaluation/assessments",
	AuthzObject: services.AssessmentsAuthzObject,
	AuthzAction: "read",
}

var ReviewsLink = types.NavigationItem{
	Name:        "Reviews",
	Href:        "/evaluation/assessments?status=submitted",
	AuthzObject: services.ReviewsAuthzObject,
	AuthzAction: "update",
}

var NavItems = []types.NavigationItem{
	PeriodsLink,
	GoalsLink,
	AssessmentsLink,
	ReviewsLink,
}
