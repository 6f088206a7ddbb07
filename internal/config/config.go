package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port                    int
	DevMode                 bool
	LogLevel                string
	DatabasePath            string
	TrackingDir             string
	TrackingRetentionMonths int
	SignalCacheTTL          time.Duration
	OpenRouterURL           string
	OpenRouterAPIKey        string
	OpenRouterModel         string
	RequestTimeout          time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:                    getEnvAsInt("PORT", 8000),
		DevMode:                 getEnvAsBool("DEV_MODE", false),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		DatabasePath:            getEnv("DATABASE_PATH", "./data/fxrisk.db"),
		TrackingDir:             getEnv("TRACKING_DIR", "./logs"),
		TrackingRetentionMonths: getEnvAsInt("TRACKING_RETENTION_MONTHS", 3),
		SignalCacheTTL:          getEnvAsDuration("SIGNAL_CACHE_TTL", 10*time.Minute),
		OpenRouterURL:           getEnv("OPENROUTER_URL", "https://openrouter.ai/api/v1"),
		OpenRouterAPIKey:        getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel:         getEnv("OPENROUTER_MODEL", "deepseek/deepseek-chat"),
		RequestTimeout:          getEnvAsDuration("REQUEST_TIMEOUT", 120*time.Second),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.TrackingDir == "" {
		return fmt.Errorf("TRACKING_DIR is required")
	}
	if c.SignalCacheTTL <= 0 {
		return fmt.Errorf("SIGNAL_CACHE_TTL must be positive")
	}

	// Note: the OpenRouter key is optional; without it the signal analyzer
	// endpoint reports a service error instead of calling out.

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
