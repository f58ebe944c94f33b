package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// TwilioConfig carries the messaging provider credentials.
type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	WhatsAppNumber string
	BaseURL        string
	Timeout        time.Duration
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL   string
	JWTSecret     string
	Port          string
	TokenTTL      time.Duration
	LogLevel      string
	PublicBaseURL string

	RateLimitNotify RateLimitConfig

	NotificationsEnabled bool
	DefaultOfficerPhone  string
	PhoneRegion          string
	Twilio               TwilioConfig

	RedisURL            string
	NotifyQueue         string
	NotifierConcurrency int
	DashboardCacheTTL   time.Duration
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		JWTSecret:           getEnv("JWT_SECRET", "dev-secret"),
		Port:                getEnv("PORT", "8080"),
		TokenTTL:            parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		PublicBaseURL:       strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		DefaultOfficerPhone: strings.TrimSpace(os.Getenv("DEFAULT_OFFICER_PHONE")),
		PhoneRegion:         strings.ToUpper(getEnv("PHONE_REGION", "IN")),
		RedisURL:            strings.TrimSpace(os.Getenv("REDIS_URL")),
		NotifyQueue:         getEnv("NOTIFY_QUEUE", "notifications"),
		Twilio: TwilioConfig{
			AccountSID:     strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID")),
			AuthToken:      strings.TrimSpace(os.Getenv("TWILIO_AUTH_TOKEN")),
			WhatsAppNumber: strings.TrimSpace(os.Getenv("TWILIO_WHATSAPP_NUMBER")),
			BaseURL:        strings.TrimRight(getEnv("TWILIO_API_BASE_URL", "https://api.twilio.com"), "/"),
		},
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_NOTIFY", "10/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_NOTIFY value: %w", err)
	}
	cfg.RateLimitNotify = rl

	enabled, err := strconv.ParseBool(getEnv("NOTIFICATIONS_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATIONS_ENABLED value: %w", err)
	}
	cfg.NotificationsEnabled = enabled

	timeout, err := time.ParseDuration(getEnv("DISPATCH_TIMEOUT", "15s"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("invalid DISPATCH_TIMEOUT value: %q", os.Getenv("DISPATCH_TIMEOUT"))
	}
	cfg.Twilio.Timeout = timeout

	ttl, err := time.ParseDuration(getEnv("DASHBOARD_CACHE_TTL", "60s"))
	if err != nil || ttl < 0 {
		return nil, fmt.Errorf("invalid DASHBOARD_CACHE_TTL value: %q", os.Getenv("DASHBOARD_CACHE_TTL"))
	}
	cfg.DashboardCacheTTL = ttl

	concurrency, err := strconv.Atoi(getEnv("NOTIFIER_CONCURRENCY", "5"))
	if err != nil || concurrency <= 0 {
		return nil, fmt.Errorf("invalid NOTIFIER_CONCURRENCY value: %q", os.Getenv("NOTIFIER_CONCURRENCY"))
	}
	cfg.NotifierConcurrency = concurrency

	return cfg, nil
}

// Missing lists the names of the provider credentials that are not set.
func (t TwilioConfig) Missing() []string {
	var missing []string
	if t.AccountSID == "" {
		missing = append(missing, "TWILIO_ACCOUNT_SID")
	}
	if t.AuthToken == "" {
		missing = append(missing, "TWILIO_AUTH_TOKEN")
	}
	if t.WhatsAppNumber == "" {
		missing = append(missing, "TWILIO_WHATSAPP_NUMBER")
	}
	return missing
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return fallback
	}
	return d
}
