// Package session owns the portal's authentication state: an explicitly
// injectable store with an enumerated lifecycle (restoring|anonymous|authenticated),
// a pluggable auth service and a durable token storage behind it.
package session

import (
	"errors"

	"github.com/trezcool/shule/core/user"
)

// Statuses
const (
	StatusRestoring     Status = "restoring"
	StatusAnonymous     Status = "anonymous"
	StatusAuthenticated Status = "authenticated"
)

var (
	// errors
	ErrAuthRejected       = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
	ErrNetworkUnavailable = errors.New("auth service unreachable")
	ErrSuperseded         = errors.New("superseded by a newer auth attempt")
)

type (
	Status string

	// Session is an immutable snapshot of the authentication state.
	// Status == StatusAuthenticated iff both Token and User are present.
	Session struct {
		Token  string
		User   *user.User
		Status Status
	}
)

func (s Session) LoggedIn() bool { return s.Status == StatusAuthenticated }

// TenantCode is the school code scoping all entity data for this session.
func (s Session) TenantCode() string {
	if s.User == nil {
		return ""
	}
	return s.User.SchoolCode
}

func (s Session) IsSuperuser() bool { return s.User != nil && s.User.IsSuperuser() }
func (s Session) IsAdmin() bool     { return s.User != nil && s.User.IsAdmin() }
func (s Session) IsTeacher() bool   { return s.User != nil && s.User.IsTeacher() }
func (s Session) IsParent() bool    { return s.User != nil && s.User.IsParent() }
