package domain

import "strings"

// Role is the closed set of actor kinds the marketplace knows about.
// Roles are tags, not a hierarchy: route rules name the exact roles they admit.
type Role string

const (
	RoleVisitor Role = "visitor"
	RoleDealer  Role = "stand"
	RoleAdmin   Role = "admin"
)

// ParseRole maps an untrusted role claim to a Role. Unknown or empty claims
// resolve to RoleVisitor.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleDealer), "dealer":
		return RoleDealer
	case string(RoleAdmin):
		return RoleAdmin
	default:
		return RoleVisitor
	}
}

func (r Role) String() string { return string(r) }

// IsDealer reports whether r is the dealer ("stand") role.
func (r Role) IsDealer() bool { return r == RoleDealer }

// IsAdmin reports whether r is the administrator role.
func (r Role) IsAdmin() bool { return r == RoleAdmin }
