package handlers

import (
	"net/http"
	"strings"

	"dashboard/internal/backend"
	"dashboard/internal/guard"
	"dashboard/internal/i18n"
)

type loginPage struct {
	page
	Next  string
	Email string
}

type registerPage struct {
	page
	Username string
	Email    string
}

func (a *App) Home(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusOK, "home", a.page(r, "Home"))
}

func (a *App) LoginForm(w http.ResponseWriter, r *http.Request) {
	p := loginPage{page: a.page(r, "Login"), Next: guard.SafeNext(r.URL.Query().Get("next"), "")}
	if r.URL.Query().Get("registered") != "" {
		p.Flash = p.T(i18n.Registered)
	}
	a.render(w, r, http.StatusOK, "login", p)
}

// Login signs the workspace in and sends the user back where the guard
// stopped them, or home.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	ws, ok := a.workspace(w, r)
	if !ok {
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	next := guard.SafeNext(r.PostFormValue("next"), "/")

	if err := ws.Session.Login(r.Context(), email, password); err != nil {
		a.log(r).Info().Err(err).Msg("login rejected")
		p := loginPage{page: a.page(r, "Login"), Next: r.PostFormValue("next"), Email: email}
		p.Error = backend.UserMessage(err)
		if p.Error == "" {
			p.Error = p.T(i18n.LoginFailed)
		}
		a.render(w, r, http.StatusUnauthorized, "login", p)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (a *App) RegisterForm(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusOK, "register", registerPage{page: a.page(r, "Register")})
}

// Register creates the account and sends the user to sign in.
func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	ws, ok := a.workspace(w, r)
	if !ok {
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	if err := ws.Session.Register(r.Context(), username, email, password); err != nil {
		a.log(r).Info().Err(err).Msg("registration rejected")
		p := registerPage{page: a.page(r, "Register"), Username: username, Email: email}
		p.Error = backend.UserMessage(err)
		if p.Error == "" {
			p.Error = p.T(i18n.RegisterFailed)
		}
		a.render(w, r, statusFor(err), "register", p)
		return
	}
	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

// Logout always lands on the login page; a failed backend logout is only logged.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	ws, ok := a.workspace(w, r)
	if !ok {
		return
	}
	if err := ws.Logout(r.Context()); err != nil {
		a.log(r).Warn().Err(err).Msg("backend logout failed")
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// TooManyAttempts answers throttled login and register posts.
func (a *App) TooManyAttempts(w http.ResponseWriter, r *http.Request) {
	p := loginPage{page: a.page(r, "Login"), Email: strings.TrimSpace(r.PostFormValue("email"))}
	p.Error = p.T(i18n.TooManyAttempts)
	a.render(w, r, http.StatusTooManyRequests, "login", p)
}
