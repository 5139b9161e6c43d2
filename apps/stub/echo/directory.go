package echostub

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/shule/core/user"
)

// Directory is the stub's in-memory user table.
type Directory struct {
	sync.RWMutex
	users   map[string]*record // keyed by username
	schools map[string]bool
}

type record struct {
	usr  user.User
	hash []byte
}

func NewDirectory() *Directory {
	return &Directory{
		users:   make(map[string]*record),
		schools: make(map[string]bool),
	}
}

// AddUser registers a user with a password; the ID is generated.
func (d *Directory) AddUser(usr user.User, pwd string) (user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.MinCost)
	if err != nil {
		return user.User{}, err
	}
	usr.ID = uuid.New().String()

	d.Lock()
	defer d.Unlock()
	d.users[usr.Username] = &record{usr: usr, hash: hash}
	if usr.SchoolCode != "" {
		d.schools[usr.SchoolCode] = true
	}
	return usr, nil
}

func (d *Directory) AddSchool(code string) {
	d.Lock()
	defer d.Unlock()
	d.schools[code] = true
}

// Authenticate verifies credentials and the tenant context. Superusers may log
// into any known school and assume its context; everyone else is bound to
// their own school code.
func (d *Directory) Authenticate(creds user.Credentials) (user.User, error) {
	d.RLock()
	defer d.RUnlock()

	rec, ok := d.users[creds.Username]
	if !ok {
		return user.User{}, errAuthenticationFailed
	}
	if err := bcrypt.CompareHashAndPassword(rec.hash, []byte(creds.Password)); err != nil {
		return user.User{}, errAuthenticationFailed
	}

	usr := rec.usr
	if creds.SchoolCode != "" && creds.SchoolCode != usr.SchoolCode {
		if !usr.IsSuperuser() || !d.schools[creds.SchoolCode] {
			return user.User{}, errAuthenticationFailed
		}
		usr.SchoolCode = creds.SchoolCode
	}
	usr.LastLogin = time.Now().UTC()
	return usr, nil
}

// GetByID looks a user up by ID, keeping the given tenant context.
func (d *Directory) GetByID(id, schoolCode string) (user.User, bool) {
	d.RLock()
	defer d.RUnlock()

	for _, rec := range d.users {
		if rec.usr.ID == id {
			usr := rec.usr
			if schoolCode != "" {
				usr.SchoolCode = schoolCode
			}
			return usr, true
		}
	}
	return user.User{}, false
}

// Seed loads the default dev fixtures: one school per role plus a superuser.
func (d *Directory) Seed() error {
	fixtures := []struct {
		usr user.User
		pwd string
	}{
		{user.User{Username: "root@jtech.io", Name: "Root", Role: user.RoleSuperuser, SchoolCode: "JTECH"}, "Xekleidoma@1"},
		{user.User{Username: "admin@wps.edu", Name: "WPS Admin", Role: user.RoleAdmin, SchoolCode: "WPS",
			Permissions: []user.Permission{user.PermManageStudents, user.PermManageClasses, user.PermManageUsers, user.PermViewReports}}, "WpsAdmin@123"},
		{user.User{Username: "teacher@wps.edu", Name: "WPS Teacher", Role: user.RoleTeacher, SchoolCode: "WPS",
			Permissions: []user.Permission{user.PermManageAttendance, user.PermManageGrades, user.PermViewReports}}, "WpsTeacher@123"},
		{user.User{Username: "parent@wps.edu", Name: "WPS Parent", Role: user.RoleParent, SchoolCode: "WPS"}, "WpsParent@123"},
	}
	for _, f := range fixtures {
		if _, err := d.AddUser(f.usr, f.pwd); err != nil {
			return err
		}
	}
	return nil
}
