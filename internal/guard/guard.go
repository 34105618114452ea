// Package guard admits requests to authenticated-only views.
package guard

import (
	"net/http"
	"net/url"

	"dashboard/internal/session"
)

// Verdict is the guard's decision for one request.
type Verdict int

const (
	Loading Verdict = iota
	Redirect
	Admit
)

func (v Verdict) String() string {
	switch v {
	case Admit:
		return "admit"
	case Redirect:
		return "redirect"
	default:
		return "loading"
	}
}

// Decide maps a session snapshot to a verdict. It has no state of its own.
func Decide(snap session.Snapshot) Verdict {
	switch {
	case !snap.Resolved():
		return Loading
	case snap.Authenticated():
		return Admit
	default:
		return Redirect
	}
}

// SnapshotFunc returns the session state that applies to r.
type SnapshotFunc func(r *http.Request) session.Snapshot

// Options configures Require.
type Options struct {
	LoginPath string
	// Loading renders the placeholder shown while the session is unresolved.
	Loading http.Handler
}

// Require wraps protected handlers. The wrapped handler never runs unless the
// session is resolved and authenticated.
func Require(snapshot SnapshotFunc, opts Options) func(http.Handler) http.Handler {
	loginPath := opts.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	loading := opts.Loading
	if loading == nil {
		loading = http.HandlerFunc(defaultLoading)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch Decide(snapshot(r)) {
			case Admit:
				next.ServeHTTP(w, r)
			case Redirect:
				target := loginPath
				if r.Method == http.MethodGet {
					target += "?next=" + url.QueryEscape(r.URL.RequestURI())
				}
				http.Redirect(w, r, target, http.StatusSeeOther)
			default:
				w.Header().Set("Retry-After", "1")
				w.Header().Set("Cache-Control", "no-store")
				loading.ServeHTTP(w, r)
			}
		})
	}
}

func defaultLoading(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("loading"))
}

// SafeNext returns next when it is a local path, otherwise fallback. It keeps
// the post-login redirect from leaving the dashboard.
func SafeNext(next, fallback string) string {
	if next == "" {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" || len(u.Path) == 0 || u.Path[0] != '/' {
		return fallback
	}
	if len(next) > 1 && (next[1] == '/' || next[1] == '\\') {
		return fallback
	}
	return next
}
