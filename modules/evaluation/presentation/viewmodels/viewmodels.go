package viewmodels

import "github.com/evaldesk/evaldesk/pkg/notify"

type Period struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// PeriodGroup is one status bucket of the grouped period view.
type PeriodGroup struct {
	Status  string    `json:"status"`
	Periods []*Period `json:"periods"`
}

type Goal struct {
	ID          string `json:"id"`
	PeriodID    string `json:"periodId"`
	EmployeeID  string `json:"employeeId"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Weight      string `json:"weight"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type GoalGroup struct {
	Category string  `json:"category"`
	Goals    []*Goal `json:"goals"`
}

type Rating struct {
	GoalID  string `json:"goalId"`
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

type Assessment struct {
	ID             string    `json:"id"`
	PeriodID       string    `json:"periodId"`
	EmployeeID     string    `json:"employeeId"`
	Status         string    `json:"status"`
	Ratings        []*Rating `json:"ratings"`
	OverallComment string    `json:"overallComment"`
	ReviewerID     string    `json:"reviewerId,omitempty"`
	ReviewComment  string    `json:"reviewComment,omitempty"`
	SubmittedAt    string    `json:"submittedAt,omitempty"`
	ReviewedAt     string    `json:"reviewedAt,omitempty"`
	CreatedAt      string    `json:"createdAt"`
	UpdatedAt      string    `json:"updatedAt"`
}

// EditSession is the API view of an open assessment edit session. Snapshot is
// the provisional state while a save is in flight and the confirmed state
// otherwise; Notifications carries queued toasts exactly once.
type EditSession struct {
	ID            string                `json:"id"`
	AssessmentID  string                `json:"assessmentId"`
	Snapshot      *Assessment           `json:"snapshot"`
	Notifications []notify.Notification `json:"notifications"`
}
