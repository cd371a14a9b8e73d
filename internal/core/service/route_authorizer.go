package service

import (
	"net/http"
	"strings"

	"github.com/standmarket/marketplace/internal/core/domain"
)

// RouteRule binds a path pattern to an access requirement. Patterns use
// echo syntax: ":name" matches one segment, a trailing "*" matches the rest
// of the path (including nothing). An empty Method matches every method.
type RouteRule struct {
	Method  string
	Pattern string
	Access  domain.Access
}

type compiledRule struct {
	method   string
	segments []string
	wildcard bool
	access   domain.Access
}

// RouteAuthorizer evaluates a static rule table against a session state.
// The first matching rule wins; unmatched paths are public.
type RouteAuthorizer struct {
	rules []compiledRule
}

func NewRouteAuthorizer(rules []RouteRule) *RouteAuthorizer {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		segs := splitPath(r.Pattern)
		wildcard := false
		if n := len(segs); n > 0 && segs[n-1] == "*" {
			segs = segs[:n-1]
			wildcard = true
		}
		compiled = append(compiled, compiledRule{
			method:   strings.ToUpper(r.Method),
			segments: segs,
			wildcard: wildcard,
			access:   r.Access,
		})
	}
	return &RouteAuthorizer{rules: compiled}
}

// DefaultRoutes is the marketplace rule table for views and API routes.
func DefaultRoutes() []RouteRule {
	return []RouteRule{
		// views
		{Pattern: "/dashboard/listings/new", Access: domain.AccessDealerOnly},
		{Pattern: "/dashboard", Access: domain.AccessDealerOrAdmin},
		{Pattern: "/dashboard/*", Access: domain.AccessDealerOrAdmin},
		{Pattern: "/admin/login", Access: domain.AccessPublic},
		{Pattern: "/admin", Access: domain.AccessAdminOnly},
		{Pattern: "/admin/*", Access: domain.AccessAdminOnly},
		{Pattern: "/account", Access: domain.AccessAuthenticated},
		{Pattern: "/account/*", Access: domain.AccessAuthenticated},

		// api
		{Method: http.MethodPost, Pattern: "/api/listings", Access: domain.AccessDealerOnly},
		{Method: http.MethodPut, Pattern: "/api/listings/:id", Access: domain.AccessDealerOrAdmin},
		{Method: http.MethodDelete, Pattern: "/api/listings/:id", Access: domain.AccessDealerOrAdmin},
		{Method: http.MethodPatch, Pattern: "/api/listings/:id/status", Access: domain.AccessDealerOrAdmin},
		{Pattern: "/api/dashboard/*", Access: domain.AccessDealerOrAdmin},
		{Pattern: "/api/admin/*", Access: domain.AccessAdminOnly},
		{Pattern: "/api/account/*", Access: domain.AccessAuthenticated},
	}
}

// Authorize decides a navigation (GET) to path.
func (a *RouteAuthorizer) Authorize(state domain.SessionState, path string) domain.Decision {
	return a.AuthorizeRequest(state, http.MethodGet, path)
}

// AuthorizeRequest decides a request. It performs no I/O.
func (a *RouteAuthorizer) AuthorizeRequest(state domain.SessionState, method, path string) domain.Decision {
	access := a.accessFor(strings.ToUpper(method), path)
	if permits(access, state) {
		return domain.Decision{Allowed: true, Access: access}
	}
	return domain.Decision{Allowed: false, Redirect: redirectFor(access), Access: access}
}

func (a *RouteAuthorizer) accessFor(method, path string) domain.Access {
	segs := splitPath(path)
	for _, r := range a.rules {
		if r.method != "" && r.method != method {
			continue
		}
		if r.matches(segs) {
			return r.access
		}
	}
	return domain.AccessPublic
}

func (r compiledRule) matches(segs []string) bool {
	if r.wildcard {
		if len(segs) < len(r.segments) {
			return false
		}
	} else if len(segs) != len(r.segments) {
		return false
	}
	for i, want := range r.segments {
		if strings.HasPrefix(want, ":") {
			continue
		}
		if segs[i] != want {
			return false
		}
	}
	return true
}

func permits(access domain.Access, state domain.SessionState) bool {
	role := state.EffectiveRole()
	switch access {
	case domain.AccessPublic:
		return true
	case domain.AccessAuthenticated:
		return state.LoggedIn
	case domain.AccessDealerOrAdmin:
		return state.LoggedIn && (role == domain.RoleDealer || role == domain.RoleAdmin)
	case domain.AccessDealerOnly:
		// Admins manage listings but only dealers create them.
		return state.LoggedIn && role == domain.RoleDealer
	case domain.AccessAdminOnly:
		return state.LoggedIn && role == domain.RoleAdmin
	default:
		return false
	}
}

func redirectFor(access domain.Access) string {
	if access == domain.AccessAdminOnly {
		return domain.AdminLoginPath
	}
	return domain.LoginPath
}

func splitPath(p string) []string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
