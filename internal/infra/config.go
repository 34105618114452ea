package infra

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents dashboard configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	BackendURL       string
	SessionSecret    string
	SecureCookies    bool
	PaymentProcessor string
	StripeKey        string
	CreditsReconcile bool
	WorkspaceIdleTTL time.Duration
	MaxWorkspaces    int
	LoginRatePerMin  int
	DefaultLocale    string
	GeoIPDBPath      string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	BackendTimeout   time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	appEnv := getEnv("APP_ENV", "development")
	cfg := &Config{
		AppEnv:           appEnv,
		Port:             getEnv("PORT", "5173"),
		BackendURL:       strings.TrimRight(os.Getenv("BACKEND_URL"), "/"),
		SessionSecret:    os.Getenv("SESSION_SECRET"),
		SecureCookies:    getEnvBool("SECURE_COOKIES", appEnv == "production"),
		PaymentProcessor: strings.ToLower(getEnv("PAYMENT_PROCESSOR", "stripe")),
		StripeKey:        os.Getenv("STRIPE_PUBLISHABLE_KEY"),
		CreditsReconcile: getEnvBool("CREDITS_RECONCILE", false),
		WorkspaceIdleTTL: time.Minute * time.Duration(getEnvInt("WORKSPACE_IDLE_TTL_MINUTES", 60)),
		MaxWorkspaces:    getEnvInt("WORKSPACE_MAX", 10000),
		LoginRatePerMin:  getEnvInt("LOGIN_RATE_LIMIT_PER_MINUTE", 10),
		DefaultLocale:    getEnv("DEFAULT_LOCALE", "en"),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		BackendTimeout:   time.Second * time.Duration(getEnvInt("BACKEND_TIMEOUT_SECONDS", 0)),
	}

	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("BACKEND_URL is required")
	}
	if u, err := url.Parse(cfg.BackendURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("BACKEND_URL must be an absolute url, got %q", cfg.BackendURL)
	}

	switch cfg.PaymentProcessor {
	case "stripe", "fake":
	default:
		return nil, fmt.Errorf("PAYMENT_PROCESSOR must be stripe or fake, got %q", cfg.PaymentProcessor)
	}
	if cfg.PaymentProcessor == "stripe" && cfg.StripeKey == "" {
		return nil, fmt.Errorf("STRIPE_PUBLISHABLE_KEY is required when PAYMENT_PROCESSOR=stripe")
	}

	return cfg, nil
}

// RequireSessionSecret validates settings only the web dashboard needs.
func (c *Config) RequireSessionSecret() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if len(c.SessionSecret) < 16 {
		return fmt.Errorf("SESSION_SECRET must be at least 16 bytes")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
