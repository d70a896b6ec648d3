package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store driver names accepted by STORE_DRIVER.
const (
	DriverJSON     = "json"
	DriverPostgres = "postgres"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port              string
	StoreDriver       string
	DataFile          string
	DatabaseURL       string
	JWTSecret         string
	TokenTTL          time.Duration
	AdminEmail        string
	AdminPasswordHash string
	RateLimitWrite    RateLimitConfig
	CORSAllowOrigins  []string
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		StoreDriver:       strings.ToLower(getEnv("STORE_DRIVER", DriverJSON)),
		DataFile:          getEnv("DATA_FILE", "data/leads.json"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret"),
		TokenTTL:          parseDuration(getEnv("JWT_TTL", "24h")),
		AdminEmail:        getEnv("ADMIN_EMAIL", "admin@localhost"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		CORSAllowOrigins:  splitOrigins(getEnv("CORS_ALLOW_ORIGINS", "*")),
	}

	switch cfg.StoreDriver {
	case DriverJSON:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", DriverPostgres)
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER value: %s", cfg.StoreDriver)
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_WRITE", "30/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WRITE value: %w", err)
	}
	cfg.RateLimitWrite = rl

	return cfg, nil
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

func splitOrigins(value string) []string {
	parts := strings.Split(value, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}
