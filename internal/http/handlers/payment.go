package handlers

import (
	"errors"
	"net/http"
	"strings"

	"dashboard/internal/checkout"
	"dashboard/internal/domain"
	"dashboard/internal/providers/payments"
)

type paymentPage struct {
	page
	Plan       domain.Plan
	Billing    payments.Billing
	Result     checkout.Result
	Processing bool
}

// PaymentForm shows checkout for the selected plan; without one it sends the
// user back to pricing.
func (a *App) PaymentForm(w http.ResponseWriter, r *http.Request) {
	ws, ok := a.workspace(w, r)
	if !ok {
		return
	}
	selected, ok := ws.Plans.Selected()
	if !ok {
		http.Redirect(w, r, "/pricing", http.StatusSeeOther)
		return
	}
	a.render(w, r, http.StatusOK, "payment", paymentPage{
		page:       a.page(r, "Payment"),
		Plan:       selected,
		Processing: ws.Checkout.Processing(),
	})
}

// Pay runs the checkout handshake. Card fields are handed to the processor
// and dropped; they are never echoed back into the form.
func (a *App) Pay(w http.ResponseWriter, r *http.Request) {
	ws, ok := a.workspace(w, r)
	if !ok {
		return
	}
	billing := payments.Billing{
		Name:  strings.TrimSpace(r.PostFormValue("name")),
		Email: strings.TrimSpace(r.PostFormValue("email")),
	}
	card := payments.Card{
		PaymentMethod: strings.TrimSpace(r.PostFormValue("payment_method")),
		Number:        strings.TrimSpace(r.PostFormValue("card_number")),
		ExpMonth:      strings.TrimSpace(r.PostFormValue("exp_month")),
		ExpYear:       strings.TrimSpace(r.PostFormValue("exp_year")),
		CVC:           strings.TrimSpace(r.PostFormValue("cvc")),
	}

	res, err := ws.Checkout.Pay(r.Context(), billing, card)
	if errors.Is(err, domain.ErrNoPlan) {
		http.Redirect(w, r, "/pricing", http.StatusSeeOther)
		return
	}
	if err != nil {
		a.log(r).Info().Err(err).Str("plan", string(res.Plan.Tier)).Msg("checkout did not complete")
	}
	if errors.Is(err, domain.ErrBusy) {
		res.Message = "A payment is already being processed."
	}
	a.render(w, r, statusFor(err), "payment", paymentPage{
		page:       a.page(r, "Payment"),
		Plan:       res.Plan,
		Billing:    billing,
		Result:     res,
		Processing: ws.Checkout.Processing(),
	})
}
