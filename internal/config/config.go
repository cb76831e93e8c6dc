package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds the application configuration.
type Config struct {
	ServerPort          int
	DatabasePath        string
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	SessionSecret       []byte
	SessionTTL          time.Duration
	SessionCookieName   string
	CookieSecure        bool
	CookieSameSite      http.SameSite
	CORSAllowedOrigins  []string
	FTSOptimizeSchedule string
}

// Load loads configuration from environment variables or sets defaults.
// SESSION_SECRET has no default: the session cookie signature is only as
// strong as the secret, so a missing or short one is a startup failure.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	ttlMinutes, err := strconv.Atoi(getEnv("SESSION_TTL_MINUTES", "1440"))
	if err != nil || ttlMinutes <= 0 {
		return nil, fmt.Errorf("invalid SESSION_TTL_MINUTES: %q", getEnv("SESSION_TTL_MINUTES", "1440"))
	}

	secret := os.Getenv("SESSION_SECRET")
	if len(secret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 bytes")
	}

	sameSite, err := parseSameSite(getEnv("COOKIE_SAMESITE", "lax"))
	if err != nil {
		return nil, err
	}

	schedule := getEnv("FTS_OPTIMIZE_SCHEDULE", "0 3 * * *")
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid FTS_OPTIMIZE_SCHEDULE: %w", err)
	}

	return &Config{
		ServerPort:          port,
		DatabasePath:        getEnv("DATABASE_PATH", "./notes.db"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             redisDB,
		SessionSecret:       []byte(secret),
		SessionTTL:          time.Duration(ttlMinutes) * time.Minute,
		SessionCookieName:   getEnv("SESSION_COOKIE_NAME", "session"),
		CookieSecure:        getEnv("COOKIE_SECURE", "false") == "true",
		CookieSameSite:      sameSite,
		CORSAllowedOrigins:  splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		FTSOptimizeSchedule: schedule,
	}, nil
}

func parseSameSite(value string) (http.SameSite, error) {
	switch strings.ToLower(value) {
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	}
	return 0, fmt.Errorf("invalid COOKIE_SAMESITE: %q (want lax, strict, or none)", value)
}

func splitAndTrim(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
