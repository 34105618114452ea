package handlers

import (
	"net/http"

	"dashboard/internal/domain"
	"dashboard/internal/i18n"
)

type pricingPage struct {
	page
	Plans    []domain.Plan
	Selected domain.PlanTier
}

func (a *App) Pricing(w http.ResponseWriter, r *http.Request) {
	ws, ok := a.workspace(w, r)
	if !ok {
		return
	}
	a.render(w, r, http.StatusOK, "pricing", a.pricingPage(r, ws.Plans.Selected))
}

// SelectPlan records the chosen tier and moves on to checkout.
func (a *App) SelectPlan(w http.ResponseWriter, r *http.Request) {
	ws, ok := a.workspace(w, r)
	if !ok {
		return
	}
	tier, err := domain.ParsePlanTier(r.PostFormValue("plan"))
	if err == nil {
		err = ws.Plans.Select(tier)
	}
	if err != nil {
		p := a.pricingPage(r, ws.Plans.Selected)
		p.Error = "Unknown plan."
		a.render(w, r, statusFor(err), "pricing", p)
		return
	}
	http.Redirect(w, r, "/payment", http.StatusSeeOther)
}

func (a *App) pricingPage(r *http.Request, selected func() (domain.Plan, bool)) pricingPage {
	p := pricingPage{page: a.page(r, i18n.ChoosePlan), Plans: domain.Plans}
	if sel, ok := selected(); ok {
		p.Selected = sel.Tier
	}
	return p
}
