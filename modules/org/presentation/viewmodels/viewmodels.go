package viewmodels

type Stage struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Position    int    `json:"position"`
	Capacity    int    `json:"capacity"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type Employee struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	SupervisorID string `json:"supervisorId,omitempty"`
	StageID      string `json:"stageId,omitempty"`
	UnitID       string `json:"unitId,omitempty"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

type Unit struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ParentID  string `json:"parentId,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// UnitNode is one node of the rendered hierarchy tree.
type UnitNode struct {
	Unit     *Unit       `json:"unit"`
	Children []*UnitNode `json:"children"`
}

type StageChange struct {
	EmployeeID string `json:"employeeId"`
	StageID    string `json:"stageId,omitempty"`
}

// AssignmentSession is the API view of a staged reassignment session.
type AssignmentSession struct {
	ID      string         `json:"id"`
	Pending []*StageChange `json:"pending"`
}

type UnitChange struct {
	UnitID   string `json:"unitId"`
	Create   bool   `json:"create,omitempty"`
	Name     string `json:"name,omitempty"`
	Move     bool   `json:"move,omitempty"`
	ParentID string `json:"parentId,omitempty"`
}

// HierarchySession is the API view of a staged hierarchy editing session.
type HierarchySession struct {
	ID      string        `json:"id"`
	Pending []*UnitChange `json:"pending"`
}

// SaveReport mirrors the staged buffer's flush outcome: saved count plus the
// entities still buffered with their failure reasons.
type SaveReport struct {
	Saved  int               `json:"saved"`
	Failed map[string]string `json:"failed,omitempty"`
}
