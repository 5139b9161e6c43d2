// Package nav renders views or redirects per navigation, driven by the session
// store and the access policy. Deciding (pure, in core/access) is kept separate
// from applying the navigation (here).
package nav

import (
	"context"
	"sync"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/access"
	"github.com/trezcool/shule/core/session"
)

// Guard states
const (
	StateBooting       State = "booting"
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

type (
	State string

	// View is the presentation collaborator a route mounts; not security-enforcing.
	View interface {
		Render(sess session.Session)
	}

	ViewFunc func(sess session.Session)

	// Entry binds a policy route to its view.
	Entry struct {
		access.Route
		View View
	}

	Options struct {
		Store   *session.Store
		Policy  access.Policy
		History History
		Routes  []Entry
		Loading View // neutral indicator rendered while booting
		Logger  core.Logger
	}

	Router struct {
		opts Options

		mu      sync.Mutex
		booted  bool
		pending string // last navigation requested while booting; replayed after restore
	}
)

func (f ViewFunc) Render(sess session.Session) { f(sess) }

func NewRouter(opts Options) *Router {
	return &Router{opts: opts}
}

// State reports the guard's lifecycle state.
func (r *Router) State() State {
	r.mu.Lock()
	booted := r.booted
	r.mu.Unlock()
	if !booted {
		return StateBooting
	}
	if r.opts.Store.Snapshot().LoggedIn() {
		return StateAuthenticated
	}
	return StateAnonymous
}

// Boot restores the session, then replays the navigation that arrived during
// boot (or the history's current path). Until Boot completes, no view mounts
// and no redirect fires; this prevents a flash of the login page for an
// already-authenticated user on reload.
func (r *Router) Boot(ctx context.Context) {
	status, reason := r.opts.Store.Restore(ctx)
	if reason != nil {
		r.opts.Logger.Debug("session not restored", reason)
	}
	r.opts.Logger.Info("session restore settled: " + string(status))

	r.mu.Lock()
	r.booted = true
	target := r.pending
	r.pending = ""
	r.mu.Unlock()

	if target == "" {
		target = r.opts.History.Current()
	}
	r.Navigate(target)
}

// Navigate evaluates the access policy for path and either mounts the target
// view or applies a redirect (replace, not push). While booting it renders the
// loading view and defers the navigation.
func (r *Router) Navigate(path string) {
	r.mu.Lock()
	if !r.booted {
		r.pending = path
		r.mu.Unlock()
		if r.opts.Loading != nil {
			r.opts.Loading.Render(session.Session{Status: session.StatusRestoring})
		}
		return
	}
	r.mu.Unlock()

	sess := r.opts.Store.Snapshot() // one consistent read per evaluation

	// the attempted path is committed first; a denial then replaces its entry,
	// so back-navigation never lands on the blocked route
	if r.opts.History.Current() != path {
		r.opts.History.Push(path)
	}

	// unknown paths and the root path land on the default landing route;
	// a single redirect hop then settles (landing admits any authenticated
	// role, login admits any anonymous visitor)
	for hops := 0; hops < 3; hops++ {
		entry, ok := r.match(path)
		if !ok {
			path = r.redirect(path, r.opts.Policy.LandingPath)
			continue
		}

		decision := r.opts.Policy.Decide(entry.Route, sess.User)
		if !decision.Allowed {
			path = r.redirect(path, decision.Target)
			continue
		}

		entry.View.Render(sess)
		return
	}
	// both redirect targets denied: a route-table misconfiguration
	r.opts.Logger.Error("navigation could not settle on a route: " + path)
}

// Logout clears the session and redirects to the login route.
func (r *Router) Logout() {
	r.opts.Store.Logout()
	r.Navigate(r.opts.Policy.LoginPath)
}

// SessionExpired is called by views when the auth service rejects the current
// token mid-session; it is recovered locally, silent except for the redirect.
func (r *Router) SessionExpired() {
	r.opts.Store.Expire()
	r.Navigate(r.opts.Policy.LoginPath)
}

func (r *Router) match(path string) (Entry, bool) {
	for _, entry := range r.opts.Routes {
		if entry.Path == path {
			return entry, true
		}
	}
	return Entry{}, false
}

// redirect replaces the current history entry so back-navigation does not loop
// onto the denied route.
func (r *Router) redirect(from, to string) string {
	if from == to {
		// should not happen with a sane policy; bail out to the login page
		to = r.opts.Policy.LoginPath
	}
	r.opts.History.Replace(to)
	return to
}
