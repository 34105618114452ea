package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"dashboard/internal/session"
	"dashboard/internal/workspace"
)

// WorkspaceCookie names the cookie carrying the signed workspace id.
const WorkspaceCookie = "dash_ws"

const workspaceIssuer = "dashboard"

type workspaceContextKey struct{}

// WorkspaceOptions configures Workspaces.
type WorkspaceOptions struct {
	Registry *workspace.Registry
	Secret   []byte
	Secure   bool
	// TokenTTL bounds how long a cookie may name a workspace.
	TokenTTL time.Duration
	// ResolveWait bounds how long a request waits for the startup session check.
	ResolveWait time.Duration
	// Loading answers GET and HEAD requests while the session check is still
	// pending; nil lets every request through.
	Loading http.Handler
	Logger  zerolog.Logger
}

// Workspaces attaches the caller's workspace to the request, creating one
// (and setting the cookie) when the cookie is missing, invalid or names an
// evicted workspace. It then gives the session check up to ResolveWait and,
// for page loads, shows Loading instead of the page while it is unresolved.
func Workspaces(opts WorkspaceOptions) func(http.Handler) http.Handler {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 30 * 24 * time.Hour
	}
	if opts.ResolveWait <= 0 {
		opts.ResolveWait = 2 * time.Second
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ws, ok := lookupWorkspace(r, opts)
			if !ok {
				created, err := opts.Registry.Create()
				if err != nil {
					opts.Logger.Error().Err(err).Msg("create workspace")
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				token, err := signWorkspace(created.ID, opts.Secret, opts.TokenTTL, time.Now())
				if err != nil {
					opts.Registry.Remove(created.ID)
					opts.Logger.Error().Err(err).Msg("sign workspace cookie")
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     WorkspaceCookie,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
					MaxAge:   int(opts.TokenTTL.Seconds()),
				})
				ws = created
			}

			snap := ws.Resolve(r.Context(), opts.ResolveWait)
			l := zerolog.Ctx(r.Context()).With().Str("workspace", ws.ID).Logger()
			ctx := context.WithValue(l.WithContext(r.Context()), workspaceContextKey{}, ws)
			r = r.WithContext(ctx)
			if !snap.Resolved() && opts.Loading != nil && (r.Method == http.MethodGet || r.Method == http.MethodHead) {
				w.Header().Set("Retry-After", "1")
				w.Header().Set("Cache-Control", "no-store")
				opts.Loading.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func lookupWorkspace(r *http.Request, opts WorkspaceOptions) (*workspace.Workspace, bool) {
	c, err := r.Cookie(WorkspaceCookie)
	if err != nil || c.Value == "" {
		return nil, false
	}
	id, err := parseWorkspace(c.Value, opts.Secret)
	if err != nil {
		opts.Logger.Debug().Err(err).Msg("rejecting workspace cookie")
		return nil, false
	}
	return opts.Registry.Get(id)
}

func signWorkspace(id string, secret []byte, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   id,
		Issuer:    workspaceIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parseWorkspace(token string, secret []byte) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(workspaceIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("workspace token without subject")
	}
	return claims.Subject, nil
}

// WorkspaceFromContext returns the request's workspace.
func WorkspaceFromContext(ctx context.Context) (*workspace.Workspace, bool) {
	ws, ok := ctx.Value(workspaceContextKey{}).(*workspace.Workspace)
	return ws, ok
}

// SessionSnapshot reads the request's session state; a request without a
// workspace counts as signed out.
func SessionSnapshot(r *http.Request) session.Snapshot {
	if ws, ok := WorkspaceFromContext(r.Context()); ok {
		return ws.Session.Snapshot()
	}
	return session.Snapshot{Status: session.StatusUnauthenticated}
}
