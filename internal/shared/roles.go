package shared

import "fmt"

// Role is a closed set of account roles. Authorization decisions switch
// exhaustively on it so an unknown value can never satisfy a check.
type Role string

const (
	// RoleAdmin may manage every module including back-office accounts.
	RoleAdmin Role = "admin"
	// RoleExecutive may manage association content but not accounts.
	RoleExecutive Role = "executive"
	// RoleMember is an ordinary member with no back-office access.
	RoleMember Role = "member"
)

// ParseRole maps a stored string onto the closed role set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleExecutive:
		return RoleExecutive, nil
	case RoleMember:
		return RoleMember, nil
	default:
		return "", fmt.Errorf("shared: unknown role %q", s)
	}
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleExecutive, RoleMember:
		return true
	default:
		return false
	}
}

// In reports whether the role is one of the allowed values.
func (r Role) In(allowed ...Role) bool {
	if !r.Valid() {
		return false
	}
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// AdminTier lists roles permitted to use the management screens.
func AdminTier() []Role {
	return []Role{RoleAdmin, RoleExecutive}
}
