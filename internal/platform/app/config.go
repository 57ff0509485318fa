package app

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/metagate-hq/platform/pkg/cryptox"
)

// Config is the environment-sourced application configuration.
type Config struct {
	SigningSecret string // Required: HMAC secret for token signing (min 32 bytes)
	Algorithm     string // Optional: HS256, HS384 or HS512 (default: HS256)
	Issuer        string // Optional: issuer claim for tokens (default: platform)

	AccessTTL  time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL time.Duration // Optional: refresh token lifetime (default: 168h)

	HashMemoryKiB   uint32 // Optional: argon2id memory cost (default: 19456)
	HashIterations  uint32 // Optional: argon2id time cost (default: 2)
	HashConcurrency int    // Optional: concurrent hash operations (default: 4)
	PepperFile      string // Optional: pepper file path, "" disables peppering

	DatabaseFile string // Optional: SQLite database file (default: ./platform.db)

	BootstrapEmail    string // Optional: seed admin email for an empty store
	BootstrapUsername string // Optional: seed admin username
	BootstrapPassword string // Optional: seed admin password

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-token sweep interval (default: 1h)
	StoreTimeout         time.Duration // Per-operation store deadline (default: 5s)
}

// ErrMissingSecret is returned when no signing secret is configured.
var ErrMissingSecret = errors.New("PLATFORM_SIGNING_SECRET is required")

func LoadConfig() (Config, error) {
	cfg := Config{
		SigningSecret: os.Getenv("PLATFORM_SIGNING_SECRET"),
		Algorithm:     getEnvOrDefault("PLATFORM_ALGORITHM", "HS256"),
		Issuer:        getEnvOrDefault("PLATFORM_ISSUER", "platform"),

		AccessTTL:  getEnvDurationOrDefault("PLATFORM_ACCESS_TTL", 15*time.Minute),
		RefreshTTL: getEnvDurationOrDefault("PLATFORM_REFRESH_TTL", 7*24*time.Hour),

		HashMemoryKiB:   uint32(getEnvIntOrDefault("PLATFORM_HASH_MEMORY_KIB", int(cryptox.DefaultArgon2Params().Memory))),
		HashIterations:  uint32(getEnvIntOrDefault("PLATFORM_HASH_ITERATIONS", int(cryptox.DefaultArgon2Params().Iterations))),
		HashConcurrency: getEnvIntOrDefault("PLATFORM_HASH_CONCURRENCY", 4),
		PepperFile:      getEnvOrDefault("PLATFORM_PEPPER_FILE", "pepper"),

		DatabaseFile: getEnvOrDefault("PLATFORM_DATABASE_FILE", "platform.db"),

		BootstrapEmail:    os.Getenv("PLATFORM_BOOTSTRAP_EMAIL"),
		BootstrapUsername: os.Getenv("PLATFORM_BOOTSTRAP_USERNAME"),
		BootstrapPassword: os.Getenv("PLATFORM_BOOTSTRAP_PASSWORD"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Hour),
		StoreTimeout:         getEnvDurationOrDefault("PLATFORM_STORE_TIMEOUT", 5*time.Second),
	}

	if cfg.SigningSecret == "" {
		return Config{}, ErrMissingSecret
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Duration strings only ("15m", "168h"). A bare integer is ambiguous
	// across keys with different natural units, so it falls back to the
	// default instead of guessing one.
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}
