// Package payments holds the card processors the checkout flow confirms
// payments with. Card details pass through a Processor call and are never kept.
package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dashboard/internal/domain"
	"dashboard/internal/infra"
)

// Card is what the checkout form collected: either a processor-issued
// payment method id or raw card input. It must only ever be handed to a
// Processor.
type Card struct {
	// PaymentMethod is a tokenized card ("pm_..."); when set the raw fields are ignored.
	PaymentMethod string

	Number   string
	ExpMonth string
	ExpYear  string
	CVC      string
}

// Tokenized reports whether the card arrived as a payment method id.
func (c Card) Tokenized() bool { return strings.TrimSpace(c.PaymentMethod) != "" }

// String hides the card so it never ends up in logs.
func (c Card) String() string {
	if c.Tokenized() {
		return "card(" + strings.TrimSpace(c.PaymentMethod) + ")"
	}
	n := strings.ReplaceAll(c.Number, " ", "")
	if len(n) < 4 {
		return "card(****)"
	}
	return "card(****" + n[len(n)-4:] + ")"
}

// Billing is the cardholder information shown on the checkout form.
type Billing struct {
	Name  string
	Email string
}

// Processor confirms a payment identified by a backend-issued client secret.
// A nil error means the processor reported success.
type Processor interface {
	Name() string
	Confirm(ctx context.Context, clientSecret string, card Card, billing Billing) error
}

// DeclineError is a processor-side refusal with a message fit for the user.
type DeclineError struct {
	Code    string
	Message string
}

func (e *DeclineError) Error() string {
	if e.Code != "" {
		return "payments: declined: " + e.Message + " (" + e.Code + ")"
	}
	return "payments: declined: " + e.Message
}

// Unwrap lets callers match domain.ErrPaymentDeclined.
func (e *DeclineError) Unwrap() error { return domain.ErrPaymentDeclined }

// DeclineMessage returns the processor's user-facing text for err, if any.
func DeclineMessage(err error) string {
	var de *DeclineError
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}

// New builds the processor named by the PAYMENT_PROCESSOR setting.
func New(name, stripeKey string, logger *infra.Logger) (Processor, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "stripe":
		return NewStripe(StripeOptions{PublishableKey: stripeKey, Logger: logger})
	case "fake":
		return NewFake(), nil
	default:
		return nil, fmt.Errorf("payments: unknown processor %q", name)
	}
}
