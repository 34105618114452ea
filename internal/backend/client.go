// Package backend is the credential-bearing client for the writing-assistant
// backend. Every call carries the session cookies held in the client's jar.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	"dashboard/internal/domain"
	"dashboard/internal/infra"
)

// ErrMissingBaseURL indicates that the client was configured without a backend address.
var ErrMissingBaseURL = errors.New("backend: base url is required")

const (
	pathAuthCheck  = "/api/users/auth/check"
	pathLogin      = "/api/users/login"
	pathRegister   = "/api/users/register"
	pathLogout     = "/api/users/logout"
	pathProfile    = "/api/users/profile"
	pathGenerate   = "/api/users/gemini"
	pathSummarize  = "/api/users/summarize"
	pathCorrect    = "/api/users/grammarly"
	pathPayment    = "/api/users/payment"
	pathUpdatePlan = "/api/users/updatePlan"
)

// Options configures the backend client.
type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against the backend on behalf of one workspace.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger

	mu             sync.RWMutex
	onUnauthorized func()
}

// APIError is returned when the backend answers with a non-2xx status.
type APIError struct {
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %s: %s (status %d)", e.Path, e.Message, e.Status)
	}
	return fmt.Sprintf("backend: %s: status %d", e.Path, e.Status)
}

// Is lets callers match a 401 with errors.Is(err, domain.ErrUnauthorized).
func (e *APIError) Is(target error) bool {
	return target == domain.ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// UserMessage returns the backend's own error text, if it sent one.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewClient constructs a client with its own cookie jar unless an HTTP client is injected.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("backend: cookie jar: %w", err)
		}
		httpClient = &http.Client{Jar: jar, Timeout: opts.RequestTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// OnUnauthorized registers fn to run whenever an authenticated call comes back 401.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

// CheckSession asks the backend whether the cookie jar holds a live session.
// Only the status code matters.
func (c *Client) CheckSession(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, pathAuthCheck, nil, nil, false)
}

// Login exchanges credentials for a session cookie.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	return c.do(ctx, http.MethodPost, pathLogin, body, nil, false)
}

// Register creates an account. It does not sign the user in.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	return c.do(ctx, http.MethodPost, pathRegister, body, nil, false)
}

// Logout invalidates the backend session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, pathLogout, struct{}{}, nil, false)
}

type profileResponse struct {
	Name        string          `json:"name"`
	FirstName   string          `json:"first_name"`
	Email       string          `json:"email"`
	Plan        string          `json:"plan"`
	Status      string          `json:"status"`
	Credits     int             `json:"credits"`
	CreditsUsed int             `json:"credits_used"`
	CreatedAt   json.RawMessage `json:"createdAt"`
}

// Profile fetches the signed-in user's profile and credit balance.
func (c *Client) Profile(ctx context.Context) (*domain.Profile, error) {
	var resp profileResponse
	if err := c.do(ctx, http.MethodGet, pathProfile, nil, &resp, true); err != nil {
		return nil, err
	}
	return &domain.Profile{
		Name:        resp.Name,
		FirstName:   resp.FirstName,
		Email:       resp.Email,
		Plan:        resp.Plan,
		Status:      resp.Status,
		Credits:     resp.Credits,
		CreditsUsed: resp.CreditsUsed,
		CreatedAt:   parseTimestamp(resp.CreatedAt),
	}, nil
}

// Generate asks the content generator for copy under heading in the given tone.
func (c *Client) Generate(ctx context.Context, heading, tone string) (string, error) {
	var resp struct {
		Response string `json:"response"`
	}
	body := map[string]string{"heading": heading, "tone": tone}
	if err := c.do(ctx, http.MethodPost, pathGenerate, body, &resp, true); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// Summarize condenses prompt to roughly words words.
func (c *Client) Summarize(ctx context.Context, prompt string, words int) (string, error) {
	var resp struct {
		Summary string `json:"summary"`
	}
	body := struct {
		Prompt string `json:"prompt"`
		Words  int    `json:"words"`
	}{Prompt: prompt, Words: words}
	if err := c.do(ctx, http.MethodPost, pathSummarize, body, &resp, true); err != nil {
		return "", err
	}
	return resp.Summary, nil
}

// Correct returns the grammar-corrected form of prompt.
func (c *Client) Correct(ctx context.Context, prompt string) (string, error) {
	var resp struct {
		CorrectedText string `json:"correctedText"`
	}
	body := map[string]string{"prompt": prompt}
	if err := c.do(ctx, http.MethodPost, pathCorrect, body, &resp, true); err != nil {
		return "", err
	}
	return resp.CorrectedText, nil
}

// CreatePayment opens a payment for plan and returns the processor's client secret.
func (c *Client) CreatePayment(ctx context.Context, amountCents int64, plan domain.PlanTier) (string, error) {
	var resp struct {
		ClientSecret string `json:"clientSecret"`
	}
	body := struct {
		Amount int64  `json:"amount"`
		Plan   string `json:"plan"`
	}{Amount: amountCents, Plan: string(plan)}
	if err := c.do(ctx, http.MethodPost, pathPayment, body, &resp, true); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.ClientSecret) == "" {
		return "", errors.New("backend: payment: empty client secret")
	}
	return resp.ClientSecret, nil
}

// UpdatePlan tells the backend to move the account onto plan.
func (c *Client) UpdatePlan(ctx context.Context, plan domain.PlanTier) error {
	body := map[string]string{"plan": string(plan)}
	return c.do(ctx, http.MethodPost, pathUpdatePlan, body, nil, true)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, authenticated bool) error {
	var reader io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("backend: %s: encode request: %w", path, err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("backend: %s: build request: %w", path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend: %s: http request: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("backend: %s: read response: %w", path, err)
	}
	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Path: path, Status: resp.StatusCode}
		var detail errorResponse
		if err := json.Unmarshal(raw, &detail); err == nil {
			apiErr.Message = strings.TrimSpace(detail.Error)
			if apiErr.Message == "" {
				apiErr.Message = strings.TrimSpace(detail.Message)
			}
		}
		if authenticated && resp.StatusCode == http.StatusUnauthorized {
			c.mu.RLock()
			hook := c.onUnauthorized
			c.mu.RUnlock()
			if hook != nil {
				hook()
			}
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("backend: %s: decode response: %w", path, err)
	}
	return nil
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z07:00", "2006-01-02"}

func parseTimestamp(raw json.RawMessage) time.Time {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
