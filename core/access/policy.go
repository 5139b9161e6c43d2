// Package access decides, per navigation, whether a user may view a route.
// Decisions are pure values; applying the resulting navigation is the guard's job.
package access

import (
	"github.com/trezcool/shule/core/user"
)

type (
	// Route is a static policy entry, defined at build time and never mutated.
	// An empty AllowedRoles list means any authenticated role may view the route.
	Route struct {
		Path         string
		Name         string
		Public       bool
		AllowedRoles []user.Role
	}

	// Decision is the outcome of a policy evaluation: either render the target
	// view, or redirect (replace, not push) to Target.
	Decision struct {
		Allowed bool
		Target  string
	}

	// Policy maps (route, user) to a Decision.
	Policy struct {
		LoginPath   string
		LandingPath string
	}
)

func Allow() Decision { return Decision{Allowed: true} }

func RedirectTo(path string) Decision { return Decision{Target: path} }

// Decide evaluates the policy for a route and an optional user (nil = anonymous).
// The order is significant: the superuser bypass short-circuits before allow-list
// checks, and an absent allow-list admits every authenticated role.
func (p Policy) Decide(route Route, usr *user.User) Decision {
	if route.Public {
		if usr != nil {
			// an already-authenticated user has no business on a public page
			return RedirectTo(p.LandingPath)
		}
		return Allow()
	}
	if usr == nil {
		return RedirectTo(p.LoginPath)
	}
	if usr.IsSuperuser() {
		return Allow()
	}
	if len(route.AllowedRoles) == 0 {
		return Allow()
	}
	for _, role := range route.AllowedRoles {
		if usr.Role == role && user.KnownRole(role) {
			return Allow()
		}
	}
	return RedirectTo(p.LandingPath)
}
