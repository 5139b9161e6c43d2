package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_roleHelpers(t *testing.T) {
	tests := []struct {
		role                          Role
		super, admin, teacher, parent bool
	}{
		{RoleSuperuser, true, false, false, false},
		{RoleAdmin, false, true, false, false},
		{RoleTeacher, false, false, true, false},
		{RoleParent, false, false, false, true},
		{"", false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			usr := User{Role: tt.role}
			assert.Equal(t, tt.super, usr.IsSuperuser())
			assert.Equal(t, tt.admin, usr.IsAdmin())
			assert.Equal(t, tt.teacher, usr.IsTeacher())
			assert.Equal(t, tt.parent, usr.IsParent())
		})
	}
}

func TestKnownRole(t *testing.T) {
	for _, role := range AllRoles {
		assert.True(t, KnownRole(role))
	}
	assert.False(t, KnownRole(""))
	assert.False(t, KnownRole("janitor"))
}

func TestRolePriority_ordering(t *testing.T) {
	assert.Greater(t, RolePriority(RoleSuperuser), RolePriority(RoleAdmin))
	assert.Greater(t, RolePriority(RoleAdmin), RolePriority(RoleTeacher))
	assert.Greater(t, RolePriority(RoleTeacher), RolePriority(RoleParent))
	assert.Equal(t, 0, RolePriority("janitor"))
}

func TestUser_HasPermission(t *testing.T) {
	teacher := User{Role: RoleTeacher, Permissions: []Permission{PermManageGrades}}
	assert.True(t, teacher.HasPermission(PermManageGrades))
	assert.False(t, teacher.HasPermission(PermManageUsers))

	// superusers hold every permission implicitly
	su := User{Role: RoleSuperuser}
	for _, perm := range []Permission{PermManageStudents, PermManageClasses, PermManageUsers, PermViewReports} {
		assert.True(t, su.HasPermission(perm))
	}

	none := User{Role: RoleParent}
	assert.False(t, none.HasPermission(PermManageGrades))
}

func TestCredentials_Validate(t *testing.T) {
	t.Run("cleans the payload", func(t *testing.T) {
		creds := Credentials{Username: "  Admin@WPS.edu ", Password: "pwd", SchoolCode: " wps "}
		assert.NoError(t, creds.Validate())
		assert.Equal(t, "admin@wps.edu", creds.Username)
		assert.Equal(t, "WPS", creds.SchoolCode)
	})

	t.Run("username and password are required", func(t *testing.T) {
		creds := Credentials{}
		assert.Error(t, creds.Validate())
	})

	t.Run("school code is optional", func(t *testing.T) {
		creds := Credentials{Username: "admin@wps.edu", Password: "pwd"}
		assert.NoError(t, creds.Validate())
	})

	t.Run("malformed school code", func(t *testing.T) {
		creds := Credentials{Username: "admin@wps.edu", Password: "pwd", SchoolCode: "w p s!"}
		assert.Error(t, creds.Validate())
	})
}
