package types

import "fmt"

// Role is the closed set of roles the identity provider may hand us. Keeping
// it an enum forces exhaustive handling at use sites instead of string
// comparisons scattered across controllers.
type Role uint8

const (
	RoleEmployee Role = iota + 1
	RoleSupervisor
	RoleAdmin
)

func ParseRole(s string) (Role, error) {
	switch s {
	case "employee":
		return RoleEmployee, nil
	case "supervisor":
		return RoleSupervisor, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleEmployee:
		return "employee"
	case RoleSupervisor:
		return "supervisor"
	case RoleAdmin:
		return "admin"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleSupervisor, RoleAdmin:
		return true
	default:
		return false
	}
}
