package services

import (
	"context"

	"github.com/evaldesk/evaldesk/pkg/authz"
)

var (
	StagesAuthzObject      = authz.ObjectName("org", "stages")
	EmployeesAuthzObject   = authz.ObjectName("org", "employees")
	UnitsAuthzObject       = authz.ObjectName("org", "units")
	AssignmentsAuthzObject = authz.ObjectName("org", "assignments")
)

// authorizeOrgFn is swappable so service tests can stub authorization.
var authorizeOrgFn = defaultAuthorizeOrg

func defaultAuthorizeOrg(ctx context.Context, object, action string) error {
	return authz.Authorize(ctx, object, action)
}

func authorizeOrg(ctx context.Context, object, action string) error {
	return authorizeOrgFn(ctx, object, action)
}
