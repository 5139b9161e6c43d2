package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

type (
	// AuthService is the external collaborator verifying credentials and tokens.
	// Implementations must guarantee resolution (respect ctx deadlines); a hanging
	// call is a contract violation this layer does not work around.
	AuthService interface {
		Login(ctx context.Context, creds user.Credentials) (token string, usr user.User, err error)
		// Me returns the user owning token, or ErrSessionExpired on an
		// invalid/expired token.
		Me(ctx context.Context, token string) (user.User, error)
	}

	// TokenStorage persists the session token (a single opaque string) across
	// process restarts. Read returns "" when no token is persisted.
	TokenStorage interface {
		Read() (string, error)
		Write(token string) error
		Clear() error
	}

	// Store is the single shared mutable resource of the portal core.
	// Snapshot always returns a consistent Session; conflicting in-flight auth
	// attempts follow a cancel-and-replace discipline: a newer Login/Logout/Restore
	// supersedes an older one, whose result is discarded on completion.
	Store struct {
		auth   AuthService
		tokens TokenStorage
		log    core.Logger

		mu         sync.Mutex
		sess       Session
		gen        uint64 // bumped on each new auth intent; stale completions are dropped
		restored   bool
		restoreErr error
		restoring  chan struct{} // non-nil while a restore is in flight
	}
)

func NewStore(auth AuthService, tokens TokenStorage, log core.Logger) *Store {
	return &Store{
		auth:   auth,
		tokens: tokens,
		log:    log,
		sess:   Session{Status: StatusRestoring},
	}
}

// Snapshot returns the current session as one consistent value.
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess
}

// Restore attempts to load the persisted token and validate it against the
// auth service. It is idempotent; concurrent callers coalesce on a single
// in-flight attempt and all observe the same final status. The returned error
// is a reason code (ErrSessionExpired, ErrNetworkUnavailable), never a fault:
// the store always settles on a definite status.
func (s *Store) Restore(ctx context.Context) (Status, error) {
	s.mu.Lock()
	if done := s.restoring; done != nil {
		s.mu.Unlock()
		<-done
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.sess.Status, s.restoreErr
	}
	if s.restored {
		defer s.mu.Unlock()
		return s.sess.Status, s.restoreErr
	}
	done := make(chan struct{})
	s.restoring = done
	s.gen++
	g := s.gen
	s.mu.Unlock()

	sess, reason := s.doRestore(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if g == s.gen {
		s.sess = sess
		s.restoreErr = reason
	}
	s.restored = true
	s.restoring = nil
	close(done)
	return s.sess.Status, s.restoreErr
}

func (s *Store) doRestore(ctx context.Context) (Session, error) {
	token, err := s.tokens.Read()
	if err != nil {
		s.log.Warn("reading persisted token", err)
		return Session{Status: StatusAnonymous}, nil
	}
	if token == "" {
		return Session{Status: StatusAnonymous}, nil
	}

	usr, err := s.auth.Me(ctx, token)
	if err != nil {
		// a rejected or unverifiable token is dropped either way
		s.clearToken()
		if errors.Is(err, ErrSessionExpired) {
			return Session{Status: StatusAnonymous}, ErrSessionExpired
		}
		s.log.Warn("validating persisted token", err)
		return Session{Status: StatusAnonymous}, ErrNetworkUnavailable
	}
	return Session{Token: token, User: &usr, Status: StatusAuthenticated}, nil
}

// Login authenticates creds against the auth service. On success the session
// becomes authenticated and the token is persisted; on failure the session is
// left unchanged and the reason (ErrAuthRejected, ErrNetworkUnavailable, a
// validation error) is returned. A Login issued while another attempt is in
// flight replaces it; the superseded caller gets ErrSuperseded.
func (s *Store) Login(ctx context.Context, creds user.Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.gen++
	g := s.gen
	s.mu.Unlock()

	token, usr, err := s.auth.Login(ctx, creds)

	s.mu.Lock()
	defer s.mu.Unlock()
	if g != s.gen {
		return ErrSuperseded
	}
	s.restored = true
	s.restoreErr = nil
	if err != nil {
		return err
	}
	s.sess = Session{Token: token, User: &usr, Status: StatusAuthenticated}
	if werr := s.tokens.Write(token); werr != nil {
		s.log.Warn("persisting session token", werr)
	}
	return nil
}

// Logout clears the in-memory session and the persisted token synchronously.
// It never fails and is idempotent; any in-flight auth attempt is superseded.
func (s *Store) Logout() {
	s.mu.Lock()
	s.gen++
	s.sess = Session{Status: StatusAnonymous}
	s.restored = true
	s.restoreErr = nil
	s.mu.Unlock()
	s.clearToken()
}

// Expire transitions the session to anonymous after the auth service rejected
// the current token on a subsequent call. Like Logout, it drops the persisted
// token; unlike Logout it records ErrSessionExpired as the reason.
func (s *Store) Expire() {
	s.mu.Lock()
	s.gen++
	s.sess = Session{Status: StatusAnonymous}
	s.restored = true
	s.restoreErr = ErrSessionExpired
	s.mu.Unlock()
	s.clearToken()
}

// Refresh re-fetches the current user and replaces it wholesale. A rejected
// token behaves exactly like an expiry: the session becomes anonymous and the
// persisted token is dropped. On a network failure the session is left as is.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if !s.sess.LoggedIn() {
		s.mu.Unlock()
		return nil
	}
	s.gen++
	g := s.gen
	token := s.sess.Token
	s.mu.Unlock()

	usr, err := s.auth.Me(ctx, token)

	s.mu.Lock()
	if g != s.gen {
		s.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			s.sess = Session{Status: StatusAnonymous}
			s.restoreErr = ErrSessionExpired
			s.mu.Unlock()
			s.clearToken()
			return ErrSessionExpired
		}
		s.mu.Unlock()
		return errors.Wrap(err, "refreshing session user")
	}
	s.sess = Session{Token: token, User: &usr, Status: StatusAuthenticated}
	s.mu.Unlock()
	return nil
}

func (s *Store) clearToken() {
	if err := s.tokens.Clear(); err != nil {
		s.log.Warn("clearing persisted token", err)
	}
}
