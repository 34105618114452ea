package domain

import (
	"strings"
	"time"
)

// Profile is the account view returned by the backend's profile endpoint.
type Profile struct {
	Name        string    `json:"name"`
	FirstName   string    `json:"first_name"`
	Email       string    `json:"email"`
	Plan        string    `json:"plan"`
	Status      string    `json:"status"`
	Credits     int       `json:"credits"`
	CreditsUsed int       `json:"credits_used"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DisplayPlan returns the plan label shown on the dashboard.
func (p Profile) DisplayPlan() string {
	if strings.TrimSpace(p.Plan) == "" {
		return "Free"
	}
	return p.Plan
}

// DisplayStatus returns the account status shown on the dashboard.
func (p Profile) DisplayStatus() string {
	if strings.TrimSpace(p.Status) == "" {
		return "Active"
	}
	return p.Status
}

// Greeting picks the friendliest name the backend gave us.
func (p Profile) Greeting() string {
	if n := strings.TrimSpace(p.FirstName); n != "" {
		return n
	}
	if n := strings.TrimSpace(p.Name); n != "" {
		return n
	}
	return p.Email
}
