package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"dashboard/internal/infra"
)

// ErrMissingKey indicates that the Stripe processor was configured without a key.
var ErrMissingKey = errors.New("payments: stripe publishable key is required")

// StripeOptions configures the Stripe processor.
type StripeOptions struct {
	PublishableKey string
	Backend        stripe.Backend
	Logger         *infra.Logger
}

// Stripe confirms PaymentIntents the way the browser SDK does: with the
// publishable key plus the intent's client secret. Tokenized cards are
// confirmed by payment method id; raw card numbers are only accepted by
// Stripe accounts with raw card data access enabled.
type Stripe struct {
	intents paymentintent.Client
	logger  *infra.Logger
}

// NewStripe constructs the processor.
func NewStripe(opts StripeOptions) (*Stripe, error) {
	key := strings.TrimSpace(opts.PublishableKey)
	if key == "" {
		return nil, ErrMissingKey
	}
	b := opts.Backend
	if b == nil {
		b = stripe.GetBackend(stripe.APIBackend)
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Stripe{intents: paymentintent.Client{B: b, Key: key}, logger: logger}, nil
}

func (s *Stripe) Name() string { return "stripe" }

// Confirm confirms the intent behind clientSecret with the given card.
func (s *Stripe) Confirm(ctx context.Context, clientSecret string, card Card, billing Billing) error {
	id, err := intentID(clientSecret)
	if err != nil {
		return err
	}
	params := &stripe.PaymentIntentConfirmParams{}
	params.Context = ctx
	params.AddExtra("client_secret", clientSecret)
	if card.Tokenized() {
		params.PaymentMethod = stripe.String(strings.TrimSpace(card.PaymentMethod))
	} else {
		params.AddExtra("payment_method_data[type]", "card")
		params.AddExtra("payment_method_data[card][number]", strings.ReplaceAll(card.Number, " ", ""))
		params.AddExtra("payment_method_data[card][exp_month]", card.ExpMonth)
		params.AddExtra("payment_method_data[card][exp_year]", card.ExpYear)
		params.AddExtra("payment_method_data[card][cvc]", card.CVC)
		if billing.Name != "" {
			params.AddExtra("payment_method_data[billing_details][name]", billing.Name)
		}
		if billing.Email != "" {
			params.AddExtra("payment_method_data[billing_details][email]", billing.Email)
		}
	}

	pi, err := s.intents.Confirm(id, params)
	if err != nil {
		return mapStripeError(err)
	}
	s.logger.Debug().Str("intent", pi.ID).Str("status", string(pi.Status)).Msg("stripe: confirmed intent")
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return &DeclineError{Code: string(pi.Status), Message: "Payment was not completed."}
	}
	return nil
}

// intentID extracts "pi_123" from "pi_123_secret_456".
func intentID(clientSecret string) (string, error) {
	secret := strings.TrimSpace(clientSecret)
	idx := strings.Index(secret, "_secret_")
	if !strings.HasPrefix(secret, "pi_") || idx <= len("pi_") {
		return "", fmt.Errorf("payments: malformed client secret")
	}
	return secret[:idx], nil
}

func mapStripeError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		switch se.Type {
		case stripe.ErrorTypeCard, stripe.ErrorTypeInvalidRequest:
			msg := se.Msg
			if msg == "" {
				msg = "Your card was declined."
			}
			return &DeclineError{Code: string(se.Code), Message: msg}
		}
	}
	return fmt.Errorf("payments: stripe confirm: %w", err)
}

var _ Processor = (*Stripe)(nil)
