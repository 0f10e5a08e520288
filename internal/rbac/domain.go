// Package rbac gates route execution on verified tokens and role membership.
package rbac

import "strings"

// Role names form a closed set. Roles are additive flags, not a hierarchy:
// a Super Admin token does not imply Admin unless it carries both.
const (
	RoleUser       = "User"
	RoleAdmin      = "Admin"
	RoleSuperAdmin = "Super Admin"
)

// AllRoles is the superset policy meaning "authenticated, any role".
func AllRoles() []string {
	return []string{RoleUser, RoleAdmin, RoleSuperAdmin}
}

// HasAnyRole reports whether the granted set intersects the required set.
func HasAnyRole(granted, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, r := range granted {
		set[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[strings.ToLower(strings.TrimSpace(r))]; ok {
			return true
		}
	}
	return false
}

func normalizeRoles(roles []string) []string {
	unique := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		unique[r] = struct{}{}
	}
	normalized := make([]string, 0, len(unique))
	for r := range unique {
		normalized = append(normalized, r)
	}
	return normalized
}
