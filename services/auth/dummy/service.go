// Package dummysvc is an in-memory session.AuthService for tests and offline dev.
package dummysvc

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/shule/core/session"
	"github.com/trezcool/shule/core/user"
)

type (
	record struct {
		usr  user.User
		hash []byte
	}

	issuedToken struct {
		userID     string
		schoolCode string
		expiresAt  time.Time
	}

	Service struct {
		sync.RWMutex
		users   map[string]*record // keyed by username
		schools map[string]bool
		tokens  map[string]issuedToken
		ttl     time.Duration

		// FailWith makes every call fail with the given error; simulates outages.
		FailWith error
	}
)

var _ session.AuthService = (*Service)(nil) // interface compliance check

func New(ttl time.Duration) *Service {
	return &Service{
		users:   make(map[string]*record),
		schools: make(map[string]bool),
		tokens:  make(map[string]issuedToken),
		ttl:     ttl,
	}
}

// AddUser registers a user with a password and returns it with a generated ID.
func (svc *Service) AddUser(usr user.User, pwd string) user.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	usr.ID = uuid.New().String()

	svc.Lock()
	defer svc.Unlock()
	svc.users[usr.Username] = &record{usr: usr, hash: hash}
	if usr.SchoolCode != "" {
		svc.schools[usr.SchoolCode] = true
	}
	return usr
}

// AddSchool registers a tenant so superusers can log into it.
func (svc *Service) AddSchool(code string) {
	svc.Lock()
	defer svc.Unlock()
	svc.schools[code] = true
}

// IssueToken mints a token for usr without credentials; for seeding test sessions.
func (svc *Service) IssueToken(usr user.User, expiresAt ...time.Time) string {
	exp := time.Now().Add(svc.ttl)
	if len(expiresAt) > 0 {
		exp = expiresAt[0]
	}
	token := uuid.New().String()

	svc.Lock()
	defer svc.Unlock()
	svc.tokens[token] = issuedToken{userID: usr.ID, schoolCode: usr.SchoolCode, expiresAt: exp}
	return token
}

func (svc *Service) Login(ctx context.Context, creds user.Credentials) (string, user.User, error) {
	svc.RLock()
	fail := svc.FailWith
	rec, ok := svc.users[creds.Username]
	svc.RUnlock()

	if fail != nil {
		return "", user.User{}, fail
	}
	if !ok {
		return "", user.User{}, session.ErrAuthRejected
	}
	if err := bcrypt.CompareHashAndPassword(rec.hash, []byte(creds.Password)); err != nil {
		return "", user.User{}, session.ErrAuthRejected
	}

	usr := rec.usr
	// tenant check; superusers may log into any known school and assume its context
	if creds.SchoolCode != "" && creds.SchoolCode != usr.SchoolCode {
		svc.RLock()
		known := svc.schools[creds.SchoolCode]
		svc.RUnlock()
		if !usr.IsSuperuser() || !known {
			return "", user.User{}, session.ErrAuthRejected
		}
		usr.SchoolCode = creds.SchoolCode
	}
	usr.LastLogin = time.Now().UTC()

	token := uuid.New().String()
	svc.Lock()
	svc.tokens[token] = issuedToken{userID: usr.ID, schoolCode: usr.SchoolCode, expiresAt: time.Now().Add(svc.ttl)}
	svc.Unlock()
	return token, usr, nil
}

func (svc *Service) Me(ctx context.Context, token string) (user.User, error) {
	svc.RLock()
	defer svc.RUnlock()

	if svc.FailWith != nil {
		return user.User{}, svc.FailWith
	}
	it, ok := svc.tokens[token]
	if !ok || time.Now().After(it.expiresAt) {
		return user.User{}, session.ErrSessionExpired
	}
	for _, rec := range svc.users {
		if rec.usr.ID == it.userID {
			usr := rec.usr
			usr.SchoolCode = it.schoolCode
			return usr, nil
		}
	}
	return user.User{}, session.ErrSessionExpired
}
