package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process settings read from the environment
type Config struct {
	Port           string
	DBDriver       string // memory | sqlite
	DBDSN          string
	LockTimeout    time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	MaxAutoSteps   int
	SweepInterval  time.Duration
	NotifyQueue    int
	RulesFile      string
	LogLevel       string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads an optional .env file and then the environment. Unset
// variables take their defaults; malformed ones are an error.
func Load() (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		DBDriver:  getEnv("DB_DRIVER", "memory"),
		DBDSN:     getEnv("DB_DSN", "file:bidding.db?cache=shared"),
		RulesFile: getEnv("RULES_FILE", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.LockTimeout, err = getDuration("LOCK_TIMEOUT", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.MaxRetries, err = getInt("MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.RetryBackoff, err = getDuration("RETRY_BACKOFF", 25*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.MaxAutoSteps, err = getInt("MAX_AUTOBID_STEPS", 1000); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = getDuration("SWEEP_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.NotifyQueue, err = getInt("NOTIFY_QUEUE", 256); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getFloat("RATE_LIMIT_RPS", 50); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 100); err != nil {
		return nil, err
	}

	switch cfg.DBDriver {
	case "memory", "sqlite":
	default:
		return nil, fmt.Errorf("config: DB_DRIVER must be memory or sqlite, got %q", cfg.DBDriver)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("config: MAX_RETRIES must not be negative, got %d", cfg.MaxRetries)
	}
	if cfg.MaxAutoSteps < 1 {
		return nil, fmt.Errorf("config: MAX_AUTOBID_STEPS must be at least 1, got %d", cfg.MaxAutoSteps)
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return v, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return v, nil
}
