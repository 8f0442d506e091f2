package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/octobees/contact-engine/internal/engine"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port              string
	JWTSecret         string
	RateLimitValidate RateLimitConfig
	Engine            engine.Config
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		JWTSecret: getEnv("JWT_SECRET", "dev-secret"),
		Engine:    engine.DefaultConfig(),
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_VALIDATE", "30/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_VALIDATE value: %w", err)
	}
	cfg.RateLimitValidate = rl

	if val, ok := os.LookupEnv("DNS_CHECK"); ok {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return nil, fmt.Errorf("invalid DNS_CHECK value: %w", err)
		}
		cfg.Engine.EnableDNSCheck = enabled
	}
	if val, ok := os.LookupEnv("STRICT_DEDUP"); ok {
		strict, err := strconv.ParseBool(val)
		if err != nil {
			return nil, fmt.Errorf("invalid STRICT_DEDUP value: %w", err)
		}
		cfg.Engine.StrictDeduplication = strict
	}
	if val, ok := os.LookupEnv("MAX_WORKERS"); ok {
		workers, err := strconv.Atoi(val)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_WORKERS value: %w", err)
		}
		cfg.Engine.MaxWorkers = workers
	}
	if val, ok := os.LookupEnv("SIMILARITY_THRESHOLD"); ok {
		threshold, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SIMILARITY_THRESHOLD value: %w", err)
		}
		cfg.Engine.SimilarityThreshold = threshold
	}

	cfg.Engine.DNSTimeout = parseDuration(getEnv("DNS_TIMEOUT", "3s"), 3*time.Second)
	cfg.Engine.DNSCacheTTL = parseDuration(getEnv("DNS_CACHE_TTL", "24h"), 24*time.Hour)
	cfg.Engine.DefaultPhoneRegion = strings.ToUpper(getEnv("DEFAULT_PHONE_REGION", "US"))

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
