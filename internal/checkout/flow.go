// Package checkout runs the payment handshake: the backend opens a payment
// and hands back a client secret, the processor confirms it, and only then is
// the backend asked to upgrade the account's plan.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"dashboard/internal/backend"
	"dashboard/internal/domain"
	"dashboard/internal/infra"
	"dashboard/internal/metrics"
	"dashboard/internal/providers/payments"
)

const (
	msgFailed    = "Payment failed."
	msgSucceeded = "Payment successful! Credits updated."
	msgUpgrade   = "Payment went through but your plan could not be updated. Please contact support."
)

// Backend is the subset of the backend client the flow needs.
type Backend interface {
	CreatePayment(ctx context.Context, amountCents int64, plan domain.PlanTier) (string, error)
	UpdatePlan(ctx context.Context, plan domain.PlanTier) error
}

// PlanSource yields the tier picked on the pricing page.
type PlanSource interface {
	Selected() (domain.Plan, bool)
}

// Result is the inline outcome shown under the checkout form.
type Result struct {
	Plan      domain.Plan
	Succeeded bool
	Message   string
}

// Flow orchestrates one workspace's checkout.
type Flow struct {
	backend   Backend
	processor payments.Processor
	plans     PlanSource
	logger    *infra.Logger

	mu         sync.Mutex
	processing bool
	last       Result
}

// NewFlow wires a checkout flow.
func NewFlow(b Backend, processor payments.Processor, plans PlanSource, logger *infra.Logger) *Flow {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Flow{backend: b, processor: processor, plans: plans, logger: logger}
}

// Processing reports whether a payment is in flight.
func (f *Flow) Processing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.processing
}

// Last returns the most recent outcome.
func (f *Flow) Last() Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// Pay charges the selected plan. The amount always comes from the catalog
// entry for the selected tier. The upgrade call is only made after the
// processor confirmed the payment.
func (f *Flow) Pay(ctx context.Context, billing payments.Billing, card payments.Card) (Result, error) {
	selected, ok := f.plans.Selected()

	f.mu.Lock()
	if f.processing {
		f.mu.Unlock()
		return Result{Plan: selected}, domain.ErrBusy
	}
	f.processing = true
	f.last = Result{Plan: selected}
	f.mu.Unlock()

	if !ok {
		return f.finish(Result{Message: "Choose a plan before paying."}, domain.ErrNoPlan)
	}
	if err := validateBilling(billing); err != nil {
		return f.finish(Result{Plan: selected, Message: err.Message}, err)
	}

	log := f.logger.With().Str("plan", string(selected.Tier)).Str("processor", f.processor.Name()).Logger()

	secret, err := f.backend.CreatePayment(ctx, selected.AmountCents, selected.Tier)
	metrics.RecordCheckout("create_payment", err == nil)
	if err != nil {
		log.Warn().Err(err).Msg("checkout: create payment failed")
		return f.finish(Result{Plan: selected, Message: failureMessage(err)}, err)
	}

	err = f.processor.Confirm(ctx, secret, card, billing)
	metrics.RecordCheckout("confirm", err == nil)
	if err != nil {
		log.Warn().Err(err).Msg("checkout: processor confirmation failed")
		return f.finish(Result{Plan: selected, Message: failureMessage(err)}, err)
	}

	err = f.backend.UpdatePlan(ctx, selected.Tier)
	metrics.RecordCheckout("update_plan", err == nil)
	if err != nil {
		log.Error().Err(err).Msg("checkout: charged but plan upgrade failed")
		return f.finish(Result{Plan: selected, Message: msgUpgrade}, fmt.Errorf("%w: %w", domain.ErrUpgradeFailed, err))
	}

	log.Info().Msg("checkout: plan upgraded")
	return f.finish(Result{Plan: selected, Succeeded: true, Message: msgSucceeded}, nil)
}

func (f *Flow) finish(res Result, err error) (Result, error) {
	f.mu.Lock()
	f.processing = false
	f.last = res
	f.mu.Unlock()
	return res, err
}

func failureMessage(err error) string {
	if msg := payments.DeclineMessage(err); msg != "" {
		return msg
	}
	if msg := backend.UserMessage(err); msg != "" {
		return msg
	}
	return msgFailed
}

// BillingError describes billing details the flow refuses to send.
type BillingError struct {
	Field   string
	Message string
}

func (e *BillingError) Error() string {
	return "checkout: invalid billing " + e.Field
}

// Unwrap lets callers match domain.ErrInvalidInput.
func (e *BillingError) Unwrap() error { return domain.ErrInvalidInput }

func validateBilling(b payments.Billing) *BillingError {
	if strings.TrimSpace(b.Name) == "" {
		return &BillingError{Field: "name", Message: "Full name is required"}
	}
	email := strings.TrimSpace(b.Email)
	if email == "" || !strings.Contains(email, "@") {
		return &BillingError{Field: "email", Message: "A valid email is required"}
	}
	return nil
}
