package user

import (
	"strings"
	"time"

	"github.com/trezcool/shule/core"
)

// Roles
const (
	RoleSuperuser Role = "superuser"
	RoleAdmin     Role = "admin"
	RoleTeacher   Role = "teacher"
	RoleParent    Role = "parent"
)

// Permissions
const (
	PermManageStudents   Permission = "manage_students"
	PermManageClasses    Permission = "manage_classes"
	PermManageAttendance Permission = "manage_attendance"
	PermManageGrades     Permission = "manage_grades"
	PermManageUsers      Permission = "manage_users"
	PermViewReports      Permission = "view_reports"
)

var (
	AllRoles = []Role{RoleSuperuser, RoleAdmin, RoleTeacher, RoleParent}

	rolePriorities = map[Role]int{
		RoleSuperuser: 40,
		RoleAdmin:     30,
		RoleTeacher:   20,
		RoleParent:    10,
	}

	Roles = []RoleChoice{
		{Name: "Parent", Value: RoleParent},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Superuser", Value: RoleSuperuser},
	}
)

type (
	Role       string
	Permission string

	// RoleChoice pairs a Role with its display name for the shell's pickers.
	RoleChoice struct {
		Name  string `json:"name"`
		Value Role   `json:"value"`
	}
)

// KnownRole reports whether r is one of the defined roles.
// An absent or unrecognized role never satisfies a route allow-list.
func KnownRole(r Role) bool {
	_, ok := rolePriorities[r]
	return ok
}

func RolePriority(role Role) int {
	return rolePriorities[role]
}

// User is the authenticated portal user, as returned by the auth service.
// It is owned by the session and replaced wholesale on refresh; never mutated in place.
type User struct {
	ID          string       `json:"id"`
	Username    string       `json:"username"`
	Name        string       `json:"name"`
	Role        Role         `json:"role"`
	SchoolCode  string       `json:"school_code"`
	Permissions []Permission `json:"permissions,omitempty"`
	LastLogin   time.Time    `json:"last_login"` // UTC
}

func (u User) IsSuperuser() bool { return u.Role == RoleSuperuser }
func (u User) IsAdmin() bool     { return u.Role == RoleAdmin }
func (u User) IsTeacher() bool   { return u.Role == RoleTeacher }
func (u User) IsParent() bool    { return u.Role == RoleParent }

// HasPermission reports whether u holds perm. Superusers hold every permission.
func (u User) HasPermission(perm Permission) bool {
	if u.IsSuperuser() {
		return true
	}
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// Credentials is the login form payload.
type Credentials struct {
	Username   string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required"`
	SchoolCode string `json:"school_code" validate:"omitempty,schoolcode"`
}

func (c *Credentials) Validate() error {
	c.Username = core.CleanString(c.Username, true /* lower */)
	c.SchoolCode = strings.ToUpper(core.CleanString(c.SchoolCode))
	return core.Validate.Struct(c)
}
