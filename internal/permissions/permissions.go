// Package permissions implements the role-based permission checks that
// guard content type access.
package permissions

import (
	"github.com/thirdwave/contentapi/internal/config"
)

// RoleAnonymous is the role every unauthenticated caller holds. Granting
// an action to it opens the action to everyone.
const RoleAnonymous = "anonymous"

// Actions checked against the permission configuration.
const (
	ActionView   = "view"
	ActionCreate = "create"
)

// Checker answers whether a role set may perform an action on a content
// type, based on the configured permission lists.
type Checker struct {
	perms config.Permissions
}

// NewChecker creates a Checker from the configured permissions.
func NewChecker(perms config.Permissions) *Checker {
	return &Checker{perms: perms}
}

// CheckPermission reports whether any of the caller's roles is allowed to
// perform the action ("view" or "create") on the content type. Per-type
// overrides take precedence over the global action lists; an action
// granted to the anonymous role is granted to every caller.
func (c *Checker) CheckPermission(roles []string, action, contentType string) bool {
	allowed := c.allowedRoles(action, contentType)

	for _, want := range allowed {
		if want == RoleAnonymous {
			return true
		}
		for _, have := range roles {
			if have == want {
				return true
			}
		}
	}

	return false
}

// allowedRoles resolves the role list for an action on a content type.
func (c *Checker) allowedRoles(action, contentType string) []string {
	if override, ok := c.perms.ContentTypes[contentType]; ok {
		switch action {
		case ActionView:
			if len(override.View) > 0 {
				return override.View
			}
		case ActionCreate:
			if len(override.Create) > 0 {
				return override.Create
			}
		}
	}

	switch action {
	case ActionView:
		return c.perms.View
	case ActionCreate:
		return c.perms.Create
	default:
		return nil
	}
}
