package session

import "strings"

// Role is the access role carried by a user record.
type Role string

const (
	// RoleAdmin has full access to the admin namespace, including user management.
	RoleAdmin Role = "admin"
	// RoleSupervisor has admin-namespace access except user management.
	RoleSupervisor Role = "supervisor"
	// RoleUser is the plain, non-admin role.
	RoleUser Role = "user"
)

// AdminAccess reports whether the role may enter the admin namespace.
func (r Role) AdminAccess() bool {
	return r == RoleAdmin || r == RoleSupervisor
}

// NormalizeRole maps a backend role string onto a known Role.
// Unknown or empty values degrade to RoleUser rather than failing: a session
// with a strange role must still resolve to a renderable, least-privileged state.
func NormalizeRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleSupervisor:
		return RoleSupervisor
	default:
		return RoleUser
	}
}

// User is the immutable user record attached to a session.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Session is the authenticated identity and token held by one tab.
type Session struct {
	Token string
	User  User
}

// AuthState is the derived authentication state published by the Bootstrapper.
// It is recomputed at bootstrap and on explicit login/logout, never stored.
//
// Invariant: IsAuthenticated implies User != nil.
type AuthState struct {
	IsAuthenticated bool
	User            *User
	Loading         bool
}
