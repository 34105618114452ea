package payments

import (
	"context"
	"strings"
	"sync"
)

// DeclinedTestCard and DeclinedTestPaymentMethod are declined by Fake,
// mirroring the processor's own test values.
const (
	DeclinedTestCard          = "4000000000000002"
	DeclinedTestPaymentMethod = "pm_card_chargeDeclined"
)

// Fake approves every card except DeclinedTestCard. It records confirmations
// so callers can assert on them.
type Fake struct {
	mu        sync.Mutex
	confirmed []string
	// Err, when set, is returned by every Confirm.
	Err error
}

// NewFake returns a processor for development and tests.
func NewFake() *Fake { return &Fake{} }

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Confirm(_ context.Context, clientSecret string, card Card, _ Billing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if strings.ReplaceAll(card.Number, " ", "") == DeclinedTestCard || strings.TrimSpace(card.PaymentMethod) == DeclinedTestPaymentMethod {
		return &DeclineError{Code: "card_declined", Message: "Your card was declined."}
	}
	f.confirmed = append(f.confirmed, clientSecret)
	return nil
}

// Confirmed returns the client secrets confirmed so far.
func (f *Fake) Confirmed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.confirmed...)
}

var _ Processor = (*Fake)(nil)
