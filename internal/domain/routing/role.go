package routing

import "strings"

// Role is the caller's user category. It selects the keyword rule table and the formatting rules.
type Role string

const (
	RoleParent  Role = "parent"
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// String returns the role tag
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether r is one of the three known roles
func (r Role) IsValid() bool {
	return r == RoleParent || r == RoleStudent || r == RoleAdmin
}

// ParseRole maps a free-form role tag to a Role. Unknown tags fall back to parent.
func ParseRole(s string) Role {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if !role.IsValid() {
		return RoleParent
	}
	return role
}

// Roles returns the known roles in display order
func Roles() []Role {
	return []Role{RoleParent, RoleStudent, RoleAdmin}
}
