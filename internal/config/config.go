package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the whole application configuration, populated from
// environment variables.
type Config struct {
	App     AppConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Lending LendingConfig
	Job     JobConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

// LendingConfig carries the startup defaults for the lending policy. The
// effective policy lives in the policy domain and can be changed by an admin
// at runtime.
type LendingConfig struct {
	MaxBooksPerReader    int
	LoanPeriodDays       int
	MaxRenewals          int
	DailyFineRate        string // decimal string, e.g. "2.00"
	MaxFine              string
	FineSuspendThreshold string
	// RenewalHoldScope decides which pending requests block a renewal:
	// "any" or "others".
	RenewalHoldScope string
}

// JobConfig configures the background worker.
type JobConfig struct {
	FineSweepCron    string
	DueSoonCron      string
	DueSoonWindow    time.Duration
	SweepBatchLimit  int
	NotifyQueue      string
	NotifyMaxRetry   int
	SchedulerTimeout time.Duration
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Library API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 15),
		},
		Lending: LendingConfig{
			MaxBooksPerReader:    getEnvInt("LENDING_MAX_BOOKS_PER_READER", 5),
			LoanPeriodDays:       getEnvInt("LENDING_LOAN_PERIOD_DAYS", 14),
			MaxRenewals:          getEnvInt("LENDING_MAX_RENEWALS", 1),
			DailyFineRate:        getEnv("LENDING_DAILY_FINE_RATE", "2.00"),
			MaxFine:              getEnv("LENDING_MAX_FINE", "50.00"),
			FineSuspendThreshold: getEnv("LENDING_FINE_SUSPEND_THRESHOLD", "10.00"),
			RenewalHoldScope:     getEnv("LENDING_RENEWAL_HOLD_SCOPE", "any"),
		},
		Job: JobConfig{
			FineSweepCron:    getEnv("JOB_FINE_SWEEP_CRON", "0 * * * *"),
			DueSoonCron:      getEnv("JOB_DUE_SOON_CRON", "0 8 * * *"),
			DueSoonWindow:    getEnvDuration("JOB_DUE_SOON_WINDOW", 48*time.Hour),
			SweepBatchLimit:  getEnvInt("JOB_SWEEP_BATCH_LIMIT", 500),
			NotifyQueue:      getEnv("JOB_NOTIFY_QUEUE", "default"),
			NotifyMaxRetry:   getEnvInt("JOB_NOTIFY_MAX_RETRY", 3),
			SchedulerTimeout: getEnvDuration("JOB_SCHEDULER_TIMEOUT", 30*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the config for obvious misconfiguration.
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	if c.Lending.MaxBooksPerReader <= 0 {
		return fmt.Errorf("LENDING_MAX_BOOKS_PER_READER must be positive")
	}
	if c.Lending.LoanPeriodDays <= 0 {
		return fmt.Errorf("LENDING_LOAN_PERIOD_DAYS must be positive")
	}
	if c.Lending.MaxRenewals < 0 {
		return fmt.Errorf("LENDING_MAX_RENEWALS cannot be negative")
	}
	if s := c.Lending.RenewalHoldScope; s != "any" && s != "others" {
		return fmt.Errorf("LENDING_RENEWAL_HOLD_SCOPE must be 'any' or 'others', got %q", s)
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
