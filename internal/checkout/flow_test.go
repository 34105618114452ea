package checkout

import (
	"context"
	"errors"
	"testing"

	"dashboard/internal/backend"
	"dashboard/internal/domain"
	"dashboard/internal/plan"
	"dashboard/internal/providers/payments"
)

type fakeBackend struct {
	paymentErr error
	upgradeErr error

	// entered and release, when set, hold CreatePayment open.
	entered chan struct{}
	release chan struct{}

	amounts  []int64
	upgrades []domain.PlanTier
}

func (f *fakeBackend) CreatePayment(_ context.Context, amount int64, tier domain.PlanTier) (string, error) {
	if f.entered != nil {
		close(f.entered)
		<-f.release
	}
	f.amounts = append(f.amounts, amount)
	if f.paymentErr != nil {
		return "", f.paymentErr
	}
	return "pi_test_secret_abc", nil
}

func (f *fakeBackend) UpdatePlan(_ context.Context, tier domain.PlanTier) error {
	f.upgrades = append(f.upgrades, tier)
	return f.upgradeErr
}

var (
	billing  = payments.Billing{Name: "Ada Lovelace", Email: "ada@example.com"}
	goodCard = payments.Card{Number: "4242424242424242", ExpMonth: "12", ExpYear: "2030", CVC: "123"}
)

func newFlow(t *testing.T, b *fakeBackend, p payments.Processor, tier domain.PlanTier) *Flow {
	t.Helper()
	plans := plan.NewStore()
	if tier != "" {
		if err := plans.Select(tier); err != nil {
			t.Fatalf("Select(%q): %v", tier, err)
		}
	}
	return NewFlow(b, p, plans, nil)
}

func TestPaySuccessUpgradesPlan(t *testing.T) {
	b := &fakeBackend{}
	proc := payments.NewFake()
	f := newFlow(t, b, proc, domain.PlanPro)

	res, err := f.Pay(context.Background(), billing, goodCard)
	if err != nil {
		t.Fatalf("Pay() error: %v", err)
	}
	if !res.Succeeded || res.Message != msgSucceeded {
		t.Fatalf("Pay() result = %+v", res)
	}
	if len(b.amounts) != 1 || b.amounts[0] != 5900 {
		t.Fatalf("payment amounts = %v, want [5900]", b.amounts)
	}
	if len(b.upgrades) != 1 || b.upgrades[0] != domain.PlanPro {
		t.Fatalf("upgrades = %v, want [pro]", b.upgrades)
	}
	if got := proc.Confirmed(); len(got) != 1 || got[0] != "pi_test_secret_abc" {
		t.Fatalf("processor confirmations = %v", got)
	}
	if f.Processing() {
		t.Fatalf("processing flag left set")
	}
}

func TestProcessorFailureNeverUpgrades(t *testing.T) {
	b := &fakeBackend{}
	proc := payments.NewFake()
	proc.Err = errors.New("network unreachable")
	f := newFlow(t, b, proc, domain.PlanBasic)

	res, err := f.Pay(context.Background(), billing, goodCard)
	if err == nil {
		t.Fatalf("Pay() expected error")
	}
	if len(b.upgrades) != 0 {
		t.Fatalf("updatePlan called after processor failure: %v", b.upgrades)
	}
	if res.Succeeded || res.Message != msgFailed {
		t.Fatalf("result = %+v", res)
	}
	if f.Processing() {
		t.Fatalf("processing flag left set")
	}
}

func TestDeclinedCardSurfacesProcessorMessage(t *testing.T) {
	b := &fakeBackend{}
	f := newFlow(t, b, payments.NewFake(), domain.PlanPremium)
	res, err := f.Pay(context.Background(), billing, payments.Card{Number: payments.DeclinedTestCard})
	if !errors.Is(err, domain.ErrPaymentDeclined) {
		t.Fatalf("Pay() error = %v, want decline", err)
	}
	if res.Message != "Your card was declined." {
		t.Fatalf("message = %q", res.Message)
	}
	if len(b.upgrades) != 0 {
		t.Fatalf("updatePlan called after decline")
	}
}

func TestBackendFailureSkipsProcessor(t *testing.T) {
	b := &fakeBackend{paymentErr: &backend.APIError{Path: "/api/users/payment", Status: 400, Message: "Invalid amount"}}
	proc := payments.NewFake()
	f := newFlow(t, b, proc, domain.PlanPro)
	res, err := f.Pay(context.Background(), billing, goodCard)
	if err == nil {
		t.Fatalf("Pay() expected error")
	}
	if res.Message != "Invalid amount" {
		t.Fatalf("message = %q, want backend error text", res.Message)
	}
	if len(proc.Confirmed()) != 0 || len(b.upgrades) != 0 {
		t.Fatalf("flow continued past failed payment creation")
	}
}

func TestUpgradeFailureIsDistinct(t *testing.T) {
	b := &fakeBackend{upgradeErr: errors.New("500")}
	f := newFlow(t, b, payments.NewFake(), domain.PlanPro)
	res, err := f.Pay(context.Background(), billing, goodCard)
	if !errors.Is(err, domain.ErrUpgradeFailed) {
		t.Fatalf("Pay() error = %v, want ErrUpgradeFailed", err)
	}
	if res.Succeeded || res.Message != msgUpgrade {
		t.Fatalf("result = %+v", res)
	}
}

func TestPayRequiresPlanAndBilling(t *testing.T) {
	b := &fakeBackend{}
	f := newFlow(t, b, payments.NewFake(), "")
	if _, err := f.Pay(context.Background(), billing, goodCard); !errors.Is(err, domain.ErrNoPlan) {
		t.Fatalf("Pay() error = %v, want ErrNoPlan", err)
	}
	f = newFlow(t, b, payments.NewFake(), domain.PlanBasic)
	if _, err := f.Pay(context.Background(), payments.Billing{Name: "Ada"}, goodCard); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("Pay() error = %v, want ErrInvalidInput", err)
	}
	if len(b.amounts) != 0 {
		t.Fatalf("backend called without plan or billing")
	}
}

func TestBillingErrorCarriesMessage(t *testing.T) {
	f := newFlow(t, &fakeBackend{}, payments.NewFake(), domain.PlanPro)
	tests := []struct {
		billing payments.Billing
		field   string
		message string
	}{
		{payments.Billing{Email: "ada@example.com"}, "name", "Full name is required"},
		{payments.Billing{Name: "Ada", Email: "ada.example.com"}, "email", "A valid email is required"},
	}
	for _, tt := range tests {
		res, err := f.Pay(context.Background(), tt.billing, goodCard)
		var be *BillingError
		if !errors.As(err, &be) {
			t.Fatalf("Pay() error = %v, want BillingError", err)
		}
		if be.Field != tt.field || res.Message != tt.message {
			t.Fatalf("Pay() = field %q message %q, want %q %q", be.Field, res.Message, tt.field, tt.message)
		}
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("BillingError does not match ErrInvalidInput")
		}
	}
}

func TestBusyPayKeepsInFlightResult(t *testing.T) {
	b := &fakeBackend{entered: make(chan struct{}), release: make(chan struct{})}
	f := newFlow(t, b, payments.NewFake(), domain.PlanPro)

	done := make(chan Result, 1)
	go func() {
		res, _ := f.Pay(context.Background(), billing, goodCard)
		done <- res
	}()
	<-b.entered

	if _, err := f.Pay(context.Background(), payments.Billing{}, goodCard); !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("second Pay() error = %v, want ErrBusy", err)
	}
	if last := f.Last(); last.Message != "" {
		t.Fatalf("Last() = %+v while the first payment is in flight", last)
	}

	close(b.release)
	res := <-done
	if !res.Succeeded {
		t.Fatalf("first Pay() = %+v, want success", res)
	}
	if last := f.Last(); !last.Succeeded || last.Message != msgSucceeded {
		t.Fatalf("Last() = %+v, want the successful payment", last)
	}
}
