package domain

// Role enumerates the actor roles recognized by the lifecycle guards.
type Role string

const (
	RoleDonor    Role = "donor"
	RoleOrg      Role = "org"
	RoleCourier  Role = "courier"
	RoleRecovery Role = "recovery"
)

// ParseRole maps a claim string onto the closed role set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleDonor, RoleOrg, RoleCourier, RoleRecovery:
		return Role(s), true
	}
	return "", false
}

// Actor is an authenticated identity plus its role, as supplied by the
// request authentication layer.
type Actor struct {
	ID   string
	Role Role
}
