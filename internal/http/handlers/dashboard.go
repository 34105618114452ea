package handlers

import (
	"errors"
	"net/http"

	"dashboard/internal/domain"
)

type dashboardPage struct {
	page
	Profile *domain.Profile
}

// Dashboard shows the signed-in user's profile.
func (a *App) Dashboard(w http.ResponseWriter, r *http.Request) {
	ws, ok := a.workspace(w, r)
	if !ok {
		return
	}
	profile, err := ws.Profile(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		a.log(r).Warn().Err(err).Msg("profile fetch failed")
		a.error(w, r, http.StatusBadGateway, "Failed to fetch profile")
		return
	}
	a.render(w, r, http.StatusOK, "dashboard", dashboardPage{page: a.page(r, "Dashboard"), Profile: profile})
}
