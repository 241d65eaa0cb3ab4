// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/notifyctl.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Storage keys — single source of truth for the persisted ledger blobs.
// The preview runtime writes under its own key so its ledger never collides
// with the managed runtime's ledger across upgrades.
// --------------------------------------------------------------------------

const (
	LedgerStorageKey        = "auction_notifications_scheduled"
	PreviewLedgerStorageKey = "preview_notifications_scheduled"
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Durable key-value store. DatabaseURL wins over SQLitePath; with
	// neither set the store is in-memory only (state lost on restart).
	DatabaseURL    string
	SQLitePath     string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Notification backend selection
	PreviewHost         bool   // sandboxed preview runtime, no background execution
	FCMCredentialsFile  string // native push via FCM when set
	FCMDeviceTokens     []string
	BackgroundChecks    bool // managed runtime background check worker
	SweepInterval       time.Duration
	BackgroundInterval  time.Duration
	NotificationChannel string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	return &Config{
		DatabaseURL:    envOr("DATABASE_URL", ""),
		SQLitePath:     envOr("SQLITE_PATH", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:8081",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		PreviewHost:         envBool("PREVIEW_HOST", false),
		FCMCredentialsFile:  envOr("FIREBASE_CREDENTIALS_FILE", ""),
		FCMDeviceTokens:     envList("FCM_DEVICE_TOKENS", nil),
		BackgroundChecks:    envBool("BACKGROUND_CHECKS_ENABLED", true),
		SweepInterval:       time.Duration(envInt("SWEEP_INTERVAL_MINUTES", 5)) * time.Minute,
		BackgroundInterval:  time.Duration(envInt("BACKGROUND_CHECK_MINUTES", 15)) * time.Minute,
		NotificationChannel: envOr("NOTIFICATION_CHANNEL", "auction-alerts"),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
