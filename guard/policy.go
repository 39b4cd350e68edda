// Package guard decides, for every navigation, whether the current session may
// enter a route and where it must be sent otherwise.
//
// The role policy is a single pure function; the Guard is a thin state machine
// over the published AuthState. Neither reads storage or performs I/O, so both
// are testable without a page environment.
package guard

import (
	"strings"

	"warden/session"
)

// Decision is the outcome of evaluating a (role, path) pair. Stateless.
type Decision struct {
	Allowed    bool
	RedirectTo string
}

// Routes is the route table the policy operates on. It is data, not code, so
// deployments can rename the namespaces without touching the decision logic.
type Routes struct {
	// AdminPrefix is the namespace reserved for admin/supervisor roles.
	AdminPrefix string `yaml:"admin_prefix"`
	// UserLanding is where plain users land and where they are bounced to.
	UserLanding string `yaml:"user_landing"`
	// AdminLanding is the admin-namespace landing route.
	AdminLanding string `yaml:"admin_landing"`
	// UserManagement is the one admin-namespace route that requires the admin
	// role exactly; supervisors are redirected to AdminLanding.
	UserManagement string `yaml:"user_management"`
	// PublicEntries are routes that redirect authenticated users to their
	// namespace landing instead of rendering (login, root).
	PublicEntries []string `yaml:"public_entries"`
}

// DefaultRoutes returns the canonical route table.
func DefaultRoutes() Routes {
	return Routes{
		AdminPrefix:    "/admin",
		UserLanding:    "/dashboard",
		AdminLanding:   "/admin/dashboard",
		UserManagement: "/admin/users",
		PublicEntries:  []string{"/", "/login"},
	}
}

// Policy maps a role and a path to an access decision.
type Policy struct {
	routes Routes
}

// NewPolicy constructs a Policy over the given route table.
func NewPolicy(routes Routes) Policy {
	return Policy{routes: routes}
}

// Routes returns the table the policy was built with.
func (p Policy) Routes() Routes { return p.routes }

// Decide evaluates access for an authenticated role on a path.
//
// Rule order matters: the public-entry bounce first, then the namespace check,
// then the user-management exception. The namespace mismatch is checked before
// the admin-only exception so a plain user hitting the user-management path is
// sent to the user landing, not the admin landing.
func (p Policy) Decide(role session.Role, path string) Decision {
	path = normalizePath(path)

	if p.isPublicEntry(path) {
		if role.AdminAccess() {
			return Decision{Allowed: false, RedirectTo: p.routes.AdminLanding}
		}
		return Decision{Allowed: false, RedirectTo: p.routes.UserLanding}
	}

	if !role.AdminAccess() {
		if p.underAdmin(path) {
			return Decision{Allowed: false, RedirectTo: p.routes.UserLanding}
		}
		return Decision{Allowed: true}
	}

	// Admin/supervisor accounts are never shown the plain-user views.
	if !p.underAdmin(path) {
		return Decision{Allowed: false, RedirectTo: p.routes.AdminLanding}
	}

	if path == p.routes.UserManagement && role != session.RoleAdmin {
		return Decision{Allowed: false, RedirectTo: p.routes.AdminLanding}
	}

	return Decision{Allowed: true}
}

func (p Policy) underAdmin(path string) bool {
	return path == p.routes.AdminPrefix || strings.HasPrefix(path, p.routes.AdminPrefix+"/")
}

func (p Policy) isPublicEntry(path string) bool {
	for _, e := range p.routes.PublicEntries {
		if path == e {
			return true
		}
	}
	return false
}

// normalizePath strips a trailing slash so "/admin/" and "/admin" decide the
// same way. The root path is left alone.
func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}
