package testutil

import (
	"io/ioutil"
	"log"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
	"github.com/trezcool/shule/services/logger"
)

// NewLogger returns a quiet core.Logger for tests.
func NewLogger() core.Logger {
	return logsvc.NewConsoleLogger(log.New(ioutil.Discard, "", 0))
}

// Fixture users, one per role, all under the WPS tenant except the superuser.

func Superuser() user.User {
	return user.User{ID: "su-1", Username: "root@jtech.io", Name: "Root", Role: user.RoleSuperuser, SchoolCode: "JTECH"}
}

func Admin() user.User {
	return user.User{
		ID: "adm-1", Username: "admin@wps.edu", Name: "WPS Admin", Role: user.RoleAdmin, SchoolCode: "WPS",
		Permissions: []user.Permission{user.PermManageStudents, user.PermManageClasses, user.PermManageUsers},
	}
}

func Teacher() user.User {
	return user.User{
		ID: "tch-1", Username: "teacher@wps.edu", Name: "WPS Teacher", Role: user.RoleTeacher, SchoolCode: "WPS",
		Permissions: []user.Permission{user.PermManageAttendance, user.PermManageGrades},
	}
}

func Parent() user.User {
	return user.User{ID: "par-1", Username: "parent@wps.edu", Name: "WPS Parent", Role: user.RoleParent, SchoolCode: "WPS"}
}
