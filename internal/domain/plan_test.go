package domain

import (
	"errors"
	"testing"
)

func TestParsePlanTier(t *testing.T) {
	tests := []struct {
		in      string
		want    PlanTier
		wantErr bool
	}{
		{in: "basic", want: PlanBasic},
		{in: " Pro ", want: PlanPro},
		{in: "PREMIUM", want: PlanPremium},
		{in: "free", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParsePlanTier(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrUnknownPlan) {
				t.Fatalf("ParsePlanTier(%q) error = %v, want ErrUnknownPlan", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParsePlanTier(%q) unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParsePlanTier(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPlanAmounts(t *testing.T) {
	want := map[PlanTier]int64{PlanBasic: 2900, PlanPro: 5900, PlanPremium: 9900}
	for tier, cents := range want {
		p, ok := LookupPlan(tier)
		if !ok {
			t.Fatalf("LookupPlan(%q) missing", tier)
		}
		if p.AmountCents != cents {
			t.Fatalf("LookupPlan(%q).AmountCents = %d, want %d", tier, p.AmountCents, cents)
		}
		if int64(p.PriceUSD)*100 != p.AmountCents {
			t.Fatalf("plan %q price mismatch: $%d vs %d cents", tier, p.PriceUSD, p.AmountCents)
		}
	}
}

func TestProfileDisplayDefaults(t *testing.T) {
	var p Profile
	if got := p.DisplayPlan(); got != "Free" {
		t.Fatalf("DisplayPlan() = %q, want Free", got)
	}
	if got := p.DisplayStatus(); got != "Active" {
		t.Fatalf("DisplayStatus() = %q, want Active", got)
	}
	p = Profile{Name: "Ada Lovelace", FirstName: "Ada", Email: "ada@example.com"}
	if got := p.Greeting(); got != "Ada" {
		t.Fatalf("Greeting() = %q, want Ada", got)
	}
}
