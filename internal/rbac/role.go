package rbac

// Role is a user's role within a workspace. The set is closed and totally
// ordered: ADMIN > MANAGER > EMPLOYEE.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

// Roles lists all valid roles, most privileged first.
var Roles = []Role{RoleAdmin, RoleManager, RoleEmployee}

// IsValid reports whether the role is one of the closed set.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// Level returns the role's position in the hierarchy (higher = more
// privileged). Unknown roles map to 0, below every real role.
func (r Role) Level() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleManager:
		return 2
	case RoleEmployee:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r is at or above the given role in the hierarchy.
func (r Role) AtLeast(other Role) bool {
	return r.Level() >= other.Level()
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// ParseRole converts a string to a Role, reporting whether it is valid.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.IsValid()
}
