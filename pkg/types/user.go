package types

import "github.com/google/uuid"

// User is the identity the gateway resolves for a request. The application
// never authenticates; it consumes `{UserID, Role}` as an opaque fact.
type User struct {
	ID   uuid.UUID
	Role Role
}

func (u User) CanAdminister() bool {
	return u.Role == RoleAdmin
}

func (u User) CanReview() bool {
	switch u.Role {
	case RoleSupervisor, RoleAdmin:
		return true
	case RoleEmployee:
		return false
	default:
		return false
	}
}
