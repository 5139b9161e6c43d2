package nav

import (
	"github.com/trezcool/shule/core/access"
	"github.com/trezcool/shule/core/session"
	"github.com/trezcool/shule/core/user"
)

// Views maps route names to their presentation components.
type Views map[string]View

// DefaultRoutes is the portal's route table, static and ordered. Routes with no
// allowed roles admit any authenticated role; superusers pass everything.
func DefaultRoutes(views Views) []Entry {
	table := []access.Route{
		{Path: "/login", Name: "login", Public: true},
		{Path: "/dashboard", Name: "dashboard"},
		{Path: "/students", Name: "students"},
		{Path: "/classes", Name: "classes"},
		{Path: "/attendance", Name: "attendance"},
		{Path: "/grades", Name: "grades"},
		{Path: "/reports", Name: "reports", AllowedRoles: []user.Role{user.RoleAdmin, user.RoleTeacher}},
		{Path: "/users", Name: "users", AllowedRoles: []user.Role{user.RoleAdmin}},
		{Path: "/schools", Name: "schools", AllowedRoles: []user.Role{user.RoleSuperuser}},
	}

	entries := make([]Entry, 0, len(table))
	for _, route := range table {
		view := views[route.Name]
		if view == nil {
			view = ViewFunc(func(session.Session) {})
		}
		entries = append(entries, Entry{Route: route, View: view})
	}
	return entries
}
