package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	DatabaseType    string
	DatabasePath    string
	DatabaseURL     string
	MigrationsPath  string
	SessionDuration time.Duration
	JWTSecret       string

	GoogleClientID       string
	GoogleClientSecret   string
	OAuthRedirectBaseURL string

	// ValkeyAddr enables the shared per-session lock when set.
	ValkeyAddr string

	Log LogConfig

	StaleFinishedAfter time.Duration
	StaleWaitingAfter  time.Duration
	SessionLockWait    time.Duration
	RateLimitPerMinute int
}

// LogConfig controls console and rotated file logging
type LogConfig struct {
	Level      string
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		DatabaseType:    getEnv("DB_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./jugayaprende.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		SessionDuration: getDuration("SESSION_DURATION", 24*time.Hour),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-me"),

		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectBaseURL: getEnv("OAUTH_REDIRECT_BASE_URL", ""),

		ValkeyAddr: getEnv("VALKEY_ADDR", ""),

		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Dir:        getEnv("LOG_DIR", ""),
			MaxSizeMB:  getInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getInt("LOG_MAX_AGE_DAYS", 14),
			Compress:   getEnv("LOG_COMPRESS", "true") == "true",
		},

		StaleFinishedAfter: getDuration("STALE_FINISHED_AFTER", time.Hour),
		StaleWaitingAfter:  getDuration("STALE_WAITING_AFTER", 24*time.Hour),
		SessionLockWait:    getDuration("SESSION_LOCK_WAIT", 5*time.Second),
		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 30),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if raw := os.Getenv(key); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			return value
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if value, err := time.ParseDuration(raw); err == nil && value > 0 {
			return value
		}
	}
	return defaultValue
}
