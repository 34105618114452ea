package domain

import (
	"fmt"
	"strings"
)

// PlanTier enumerates the subscription levels offered on the pricing page.
type PlanTier string

const (
	PlanBasic   PlanTier = "basic"
	PlanPro     PlanTier = "pro"
	PlanPremium PlanTier = "premium"
)

// Plan describes a tier in the catalog.
type Plan struct {
	Tier        PlanTier
	Title       string
	PriceUSD    int
	AmountCents int64
	Credits     int
	Features    []string
	Popular     bool
}

// Plans is the catalog in display order. Amounts are the only values ever sent
// to the backend's payment endpoint.
var Plans = []Plan{
	{
		Tier:        PlanBasic,
		Title:       "Basic",
		PriceUSD:    29,
		AmountCents: 2900,
		Credits:     20,
		Features:    []string{"20 Credits", "Basic Support", "Limited Access"},
	},
	{
		Tier:        PlanPro,
		Title:       "Pro",
		PriceUSD:    59,
		AmountCents: 5900,
		Credits:     100,
		Features:    []string{"100 Credits", "Priority Support", "Advanced Features"},
		Popular:     true,
	},
	{
		Tier:        PlanPremium,
		Title:       "Premium",
		PriceUSD:    99,
		AmountCents: 9900,
		Credits:     200,
		Features:    []string{"200 Credits", "All Pro Features", "24/7 Priority Support", "Custom Integrations"},
	},
}

// ParsePlanTier normalizes user input into a known tier.
func ParsePlanTier(raw string) (PlanTier, error) {
	tier := PlanTier(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := LookupPlan(tier); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlan, raw)
	}
	return tier, nil
}

// LookupPlan returns the catalog entry for tier.
func LookupPlan(tier PlanTier) (Plan, bool) {
	for _, p := range Plans {
		if p.Tier == tier {
			return p, true
		}
	}
	return Plan{}, false
}
