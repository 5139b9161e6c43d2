package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/shule/core/session"
	"github.com/trezcool/shule/core/user"
	"github.com/trezcool/shule/services/auth/dummy"
	"github.com/trezcool/shule/storage/token/dummy"
	"github.com/trezcool/shule/tests"
)

type fakeAuth struct {
	mu         sync.Mutex
	loginCalls int
	meCalls    int
	loginFn    func(creds user.Credentials) (string, user.User, error)
	meFn       func(token string) (user.User, error)
}

var _ session.AuthService = (*fakeAuth)(nil)

func (f *fakeAuth) Login(_ context.Context, creds user.Credentials) (string, user.User, error) {
	f.mu.Lock()
	f.loginCalls++
	fn := f.loginFn
	f.mu.Unlock()
	return fn(creds)
}

func (f *fakeAuth) Me(_ context.Context, token string) (user.User, error) {
	f.mu.Lock()
	f.meCalls++
	fn := f.meFn
	f.mu.Unlock()
	return fn(token)
}

func (f *fakeAuth) calls() (login, me int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls, f.meCalls
}

func newStore(auth session.AuthService, tokens session.TokenStorage) *session.Store {
	return session.NewStore(auth, tokens, testutil.NewLogger())
}

func TestStore_Restore_noPersistedToken(t *testing.T) {
	svc := dummysvc.New(time.Hour)
	tokens := dummystore.New()
	store := newStore(svc, tokens)

	assert.Equal(t, session.StatusRestoring, store.Snapshot().Status)

	status, err := store.Restore(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, session.StatusAnonymous, status)
	assert.Nil(t, store.Snapshot().User)
}

func TestStore_Restore_validToken(t *testing.T) {
	svc := dummysvc.New(time.Hour)
	usr := svc.AddUser(testutil.Teacher(), "secret")
	token := svc.IssueToken(usr)
	tokens := dummystore.New(token)
	store := newStore(svc, tokens)

	status, err := store.Restore(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, session.StatusAuthenticated, status)

	sess := store.Snapshot()
	assert.True(t, sess.LoggedIn())
	assert.Equal(t, usr.Username, sess.User.Username)
	assert.True(t, sess.IsTeacher())
	assert.Equal(t, "WPS", sess.TenantCode())
	assert.Equal(t, token, tokens.Token()) // still persisted
}

func TestStore_Restore_expiredToken(t *testing.T) {
	svc := dummysvc.New(time.Hour)
	usr := svc.AddUser(testutil.Admin(), "secret")
	token := svc.IssueToken(usr, time.Now().Add(-time.Minute))
	tokens := dummystore.New(token)
	store := newStore(svc, tokens)

	status, err := store.Restore(context.Background())
	assert.Equal(t, session.ErrSessionExpired, err)
	assert.Equal(t, session.StatusAnonymous, status)
	assert.Equal(t, "", tokens.Token()) // rejected token is dropped
}

func TestStore_Restore_authServiceUnreachable(t *testing.T) {
	svc := dummysvc.New(time.Hour)
	usr := svc.AddUser(testutil.Admin(), "secret")
	token := svc.IssueToken(usr)
	svc.FailWith = session.ErrNetworkUnavailable
	tokens := dummystore.New(token)
	store := newStore(svc, tokens)

	status, err := store.Restore(context.Background())
	assert.Equal(t, session.ErrNetworkUnavailable, err)
	assert.Equal(t, session.StatusAnonymous, status)
	assert.Equal(t, "", tokens.Token())
}

func TestStore_Restore_isIdempotent(t *testing.T) {
	usr := testutil.Parent()
	auth := &fakeAuth{meFn: func(string) (user.User, error) { return usr, nil }}
	store := newStore(auth, dummystore.New("tok"))

	for i := 0; i < 3; i++ {
		status, err := store.Restore(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, session.StatusAuthenticated, status)
	}
	_, me := auth.calls()
	assert.Equal(t, 1, me)
}

// concurrent Restore callers coalesce on one in-flight attempt and observe the
// same final status; the collaborator is hit exactly once.
func TestStore_Restore_concurrentCallersCoalesce(t *testing.T) {
	release := make(chan struct{})
	usr := testutil.Admin()
	auth := &fakeAuth{meFn: func(string) (user.User, error) {
		<-release
		return usr, nil
	}}
	store := newStore(auth, dummystore.New("tok"))

	const callers = 8
	statuses := make(chan session.Status, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, _ := store.Restore(context.Background())
			statuses <- status
		}()
	}
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()
	close(statuses)

	for status := range statuses {
		assert.Equal(t, session.StatusAuthenticated, status)
	}
	_, me := auth.calls()
	assert.Equal(t, 1, me)
}

func TestStore_Login(t *testing.T) {
	svc := dummysvc.New(time.Hour)
	svc.AddUser(testutil.Admin(), "WpsAdmin@123")
	tokens := dummystore.New()
	store := newStore(svc, tokens)
	store.Logout() // settle at anonymous

	t.Run("success stores and persists the session", func(t *testing.T) {
		err := store.Login(context.Background(), user.Credentials{
			Username: "admin@wps.edu", Password: "WpsAdmin@123", SchoolCode: "WPS",
		})
		assert.NoError(t, err)

		sess := store.Snapshot()
		assert.True(t, sess.LoggedIn())
		assert.True(t, sess.IsAdmin())
		assert.NotEmpty(t, tokens.Token())
		assert.Equal(t, sess.Token, tokens.Token())
	})

	t.Run("bad credentials leave the session unchanged", func(t *testing.T) {
		before := store.Snapshot()
		err := store.Login(context.Background(), user.Credentials{
			Username: "admin@wps.edu", Password: "nope", SchoolCode: "WPS",
		})
		assert.Equal(t, session.ErrAuthRejected, err)
		assert.Equal(t, before, store.Snapshot())
	})

	t.Run("wrong tenant is rejected for non-superusers", func(t *testing.T) {
		err := store.Login(context.Background(), user.Credentials{
			Username: "admin@wps.edu", Password: "WpsAdmin@123", SchoolCode: "JTECH",
		})
		assert.Equal(t, session.ErrAuthRejected, err)
	})
}

func TestStore_Login_superuserCrossSchool(t *testing.T) {
	svc := dummysvc.New(time.Hour)
	svc.AddUser(testutil.Superuser(), "Xekleidoma@1")
	svc.AddSchool("WPS")
	store := newStore(svc, dummystore.New())
	store.Logout()

	err := store.Login(context.Background(), user.Credentials{
		Username: "root@jtech.io", Password: "Xekleidoma@1", SchoolCode: "WPS",
	})
	assert.NoError(t, err)

	sess := store.Snapshot()
	assert.True(t, sess.IsSuperuser())
	assert.Equal(t, "WPS", sess.TenantCode()) // assumes the target school's context
}

func TestStore_Login_invalidPayloadNeverHitsTheService(t *testing.T) {
	auth := &fakeAuth{}
	store := newStore(auth, dummystore.New())

	err := store.Login(context.Background(), user.Credentials{Username: "admin@wps.edu"})
	assert.Error(t, err) // password required

	login, _ := auth.calls()
	assert.Equal(t, 0, login)
}

// login discipline is cancel-and-replace: a second attempt supersedes the
// first, whose result is discarded and whose caller gets ErrSuperseded.
func TestStore_Login_cancelAndReplace(t *testing.T) {
	first := make(chan struct{})
	alice := testutil.Teacher()
	bob := testutil.Admin()
	auth := &fakeAuth{loginFn: func(creds user.Credentials) (string, user.User, error) {
		if creds.Username == alice.Username {
			<-first
			return "tok-alice", alice, nil
		}
		return "tok-bob", bob, nil
	}}
	tokens := dummystore.New()
	store := newStore(auth, tokens)
	store.Logout()

	errc := make(chan error, 1)
	go func() {
		errc <- store.Login(context.Background(), user.Credentials{Username: alice.Username, Password: "x"})
	}()
	time.Sleep(10 * time.Millisecond)

	assert.NoError(t, store.Login(context.Background(), user.Credentials{Username: bob.Username, Password: "x"}))
	close(first)

	assert.Equal(t, session.ErrSuperseded, <-errc)
	sess := store.Snapshot()
	assert.Equal(t, bob.Username, sess.User.Username) // the replacing attempt wins
	assert.Equal(t, "tok-bob", tokens.Token())
}

// a restore that resolves after a newer auth intent started must not clobber it.
func TestStore_Restore_staleResultDiscarded(t *testing.T) {
	release := make(chan struct{})
	old := testutil.Parent()
	fresh := testutil.Admin()
	auth := &fakeAuth{
		meFn: func(string) (user.User, error) {
			<-release
			return old, nil
		},
		loginFn: func(user.Credentials) (string, user.User, error) {
			return "tok-fresh", fresh, nil
		},
	}
	tokens := dummystore.New("tok-old")
	store := newStore(auth, tokens)

	done := make(chan struct{})
	go func() {
		defer close(done)
		store.Restore(context.Background())
	}()
	time.Sleep(10 * time.Millisecond)

	assert.NoError(t, store.Login(context.Background(), user.Credentials{Username: fresh.Username, Password: "x"}))
	close(release)
	<-done

	sess := store.Snapshot()
	assert.Equal(t, fresh.Username, sess.User.Username)
	assert.Equal(t, "tok-fresh", sess.Token)
}

func TestStore_Logout_isIdempotent(t *testing.T) {
	svc := dummysvc.New(time.Hour)
	usr := svc.AddUser(testutil.Admin(), "secret")
	tokens := dummystore.New(svc.IssueToken(usr))
	store := newStore(svc, tokens)

	status, _ := store.Restore(context.Background())
	assert.Equal(t, session.StatusAuthenticated, status)

	store.Logout()
	store.Logout()

	sess := store.Snapshot()
	assert.Equal(t, session.StatusAnonymous, sess.Status)
	assert.Nil(t, sess.User)
	assert.Equal(t, "", tokens.Token())
}

func TestStore_Logout_neverFails(t *testing.T) {
	tokens := dummystore.New("tok")
	tokens.ClearErr = assert.AnError
	store := newStore(dummysvc.New(time.Hour), tokens)

	assert.NotPanics(t, func() {
		store.Logout()
		store.Logout()
	})
	assert.Equal(t, session.StatusAnonymous, store.Snapshot().Status)
}

func TestStore_Expire(t *testing.T) {
	svc := dummysvc.New(time.Hour)
	usr := svc.AddUser(testutil.Teacher(), "secret")
	tokens := dummystore.New(svc.IssueToken(usr))
	store := newStore(svc, tokens)
	store.Restore(context.Background())

	store.Expire()

	sess := store.Snapshot()
	assert.Equal(t, session.StatusAnonymous, sess.Status)
	assert.Equal(t, "", tokens.Token())
}

func TestStore_Refresh(t *testing.T) {
	t.Run("replaces the user wholesale", func(t *testing.T) {
		usr := testutil.Teacher()
		auth := &fakeAuth{meFn: func(string) (user.User, error) { return usr, nil }}
		store := newStore(auth, dummystore.New("tok"))
		store.Restore(context.Background())

		usr.Name = "Renamed Teacher"
		usr.Permissions = append(usr.Permissions, user.PermViewReports)
		assert.NoError(t, store.Refresh(context.Background()))

		sess := store.Snapshot()
		assert.Equal(t, "Renamed Teacher", sess.User.Name)
		assert.True(t, sess.User.HasPermission(user.PermViewReports))
	})

	t.Run("a rejected token expires the session", func(t *testing.T) {
		calls := 0
		usr := testutil.Teacher()
		auth := &fakeAuth{meFn: func(string) (user.User, error) {
			calls++
			if calls > 1 {
				return user.User{}, session.ErrSessionExpired
			}
			return usr, nil
		}}
		tokens := dummystore.New("tok")
		store := newStore(auth, tokens)
		store.Restore(context.Background())

		err := store.Refresh(context.Background())
		assert.Equal(t, session.ErrSessionExpired, err)
		assert.Equal(t, session.StatusAnonymous, store.Snapshot().Status)
		assert.Equal(t, "", tokens.Token())
	})

	t.Run("no-op while anonymous", func(t *testing.T) {
		auth := &fakeAuth{}
		store := newStore(auth, dummystore.New())
		store.Logout()

		assert.NoError(t, store.Refresh(context.Background()))
		_, me := auth.calls()
		assert.Equal(t, 0, me)
	})
}
