package org

import (
	"github.com/evaldesk/evaldesk/modules/org/services"
	"github.com/evaldesk/evaldesk/pkg/types"
)

var StagesLink = types.NavigationItem{
	Name:        "Competency Stages",
	Href:        "/org/stages",
	AuthzObject: services.StagesAuthzObject,
	AuthzAction: "read",
}

var EmployeesLink = types.NavigationItem{
	Name:        "Employees",
	Href:        "/org/employees",
	AuthzObject: services.EmployeesAuthzObject,
	AuthzAction: "read",
}

var UnitsLink = types.NavigationItem{
	Name:        "Org Units",
	Href:        "/org/units",
	AuthzObject: services.UnitsAuthzObject,
	AuthzAction: "read",
}

var AssignmentsLink = types.NavigationItem{
	Name:        "Stage Assignments",
	Href:        "/org/assignments/sessions",
	AuthzObject: services.AssignmentsAuthzObject,
	AuthzAction: "read",
}

var NavItems = []types.NavigationItem{
	StagesLink,
	EmployeesLink,
	UnitsLink,
	AssignmentsLink,
}
