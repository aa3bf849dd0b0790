// Package config loads and validates all environment variables at startup.
// Every other package receives typed values; nothing reads os.Getenv directly.
//
// The returned *Config is built once in main and never mutated afterwards;
// handlers and clients receive the fields they need through their constructors.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the fully-parsed application configuration.
type Config struct {
	// ── Server ────────────────────────────────────────────────────────────────
	Port string // default "8080"
	Env  string // "development" | "staging" | "production"

	// EventSigningSecret, when set, is the HMAC-SHA256 key the event source
	// signs ingestion payloads with. Empty disables verification (development).
	EventSigningSecret string

	// ── Database ──────────────────────────────────────────────────────────────
	// Optional. When set, every delivery outcome is written to the
	// notification_deliveries audit table.
	DatabaseURL string

	// ── Mailchimp ─────────────────────────────────────────────────────────────
	MailchimpAPIKey       string
	MailchimpListID       string
	MailchimpServerPrefix string // data-center region code, e.g. "us21"

	// ── Resend ────────────────────────────────────────────────────────────────
	ResendAPIKey  string
	EmailFromAddr string // default "support@pinnaclewellness.com"
	EmailFromName string // default "Pinnacle Wellness"

	// BookingURL is the call-to-action target in the single-respondent email.
	BookingURL string

	// HTTPTimeout bounds each outbound API call. Default: 15s.
	HTTPTimeout time.Duration
}

// serverPrefixPattern matches Mailchimp data-center codes ("us1" … "us21").
var serverPrefixPattern = regexp.MustCompile(`^[a-z]{2}[0-9]{1,3}$`)

// Load reads all environment variables and returns a validated Config.
// It automatically loads a .env file from the working directory when present,
// so plain `go run ./cmd/notifier` works in development without any wrapper.
// Real environment variables always take precedence over .env values.
func Load() (*Config, error) {
	// godotenv.Load never overrides keys that are already set. A missing file
	// is fine.
	_ = godotenv.Load(".env")

	c := &Config{
		Port:                  getEnv("PORT", "8080"),
		Env:                   getEnv("ENV", "development"),
		EventSigningSecret:    os.Getenv("EVENT_SIGNING_SECRET"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		MailchimpAPIKey:       os.Getenv("MAILCHIMP_API_KEY"),
		MailchimpListID:       os.Getenv("MAILCHIMP_LIST_ID"),
		MailchimpServerPrefix: strings.ToLower(os.Getenv("MAILCHIMP_SERVER_PREFIX")),
		ResendAPIKey:          os.Getenv("RESEND_API_KEY"),
		EmailFromAddr:         getEnv("EMAIL_FROM_ADDR", "support@pinnaclewellness.com"),
		EmailFromName:         getEnv("EMAIL_FROM_NAME", "Pinnacle Wellness"),
		BookingURL:            getEnv("BOOKING_URL", "https://pinnaclewellness.com/book"),
		HTTPTimeout:           getEnvAsDuration("HTTP_TIMEOUT", 15*time.Second),
	}

	return c, c.validate()
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	var errs []error

	required := map[string]string{
		"MAILCHIMP_API_KEY":       c.MailchimpAPIKey,
		"MAILCHIMP_LIST_ID":       c.MailchimpListID,
		"MAILCHIMP_SERVER_PREFIX": c.MailchimpServerPrefix,
		"RESEND_API_KEY":          c.ResendAPIKey,
	}

	for name, val := range required {
		if val == "" {
			errs = append(errs, fmt.Errorf("missing required env var: %s", name))
		}
	}

	if c.MailchimpServerPrefix != "" && !serverPrefixPattern.MatchString(c.MailchimpServerPrefix) {
		errs = append(errs, fmt.Errorf("MAILCHIMP_SERVER_PREFIX %q is not a data-center code like \"us21\"", c.MailchimpServerPrefix))
	}

	if c.IsProduction() && c.EventSigningSecret == "" {
		errs = append(errs, errors.New("EVENT_SIGNING_SECRET must be set in production"))
	}

	return errors.Join(errs...)
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	// A plain integer is treated as seconds.
	if value, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(value) * time.Second
	}
	// Fall back to Go duration syntax: "30s", "5m", "1h", etc.
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	return defaultValue
}
