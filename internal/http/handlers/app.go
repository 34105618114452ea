package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"dashboard/internal/domain"
	"dashboard/internal/middleware"
	"dashboard/internal/workspace"
)

// App carries what every dashboard handler needs.
type App struct {
	Registry *workspace.Registry
	Logger   zerolog.Logger

	pages map[string]*template.Template
}

// NewApp parses the embedded templates; it fails only on a broken template.
func NewApp(reg *workspace.Registry, logger zerolog.Logger) (*App, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &App{Registry: reg, Logger: logger, pages: pages}, nil
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// error renders the generic error page.
func (a *App) error(w http.ResponseWriter, r *http.Request, code int, msg string) {
	p := a.page(r, http.StatusText(code))
	p.Error = msg
	a.render(w, r, code, "error", p)
}

// workspace returns the request's workspace; the router guarantees one.
func (a *App) workspace(w http.ResponseWriter, r *http.Request) (*workspace.Workspace, bool) {
	ws, ok := middleware.WorkspaceFromContext(r.Context())
	if !ok {
		a.Logger.Error().Str("path", r.URL.Path).Msg("request without workspace")
		a.error(w, r, http.StatusInternalServerError, "Something went wrong.")
		return nil, false
	}
	return ws, true
}

func (a *App) log(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}

// statusFor maps a domain failure to the HTTP status of the re-rendered page.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnknownPlan):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNoCredits), errors.Is(err, domain.ErrPaymentDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func formInt(r *http.Request, key string) (int, error) {
	raw := r.PostFormValue(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
	}
	return n, nil
}
