package config

import (
	"os"
	"time"
)

// Config holds the console configuration
type Config struct {
	ServiceName string
	Environment string
	LogLevel    string

	APIBaseURL string
	LiveURL    string
	APIToken   string

	RequestTimeout    time.Duration
	PollInterval      time.Duration
	ReconnectInterval time.Duration
	InactivityTimeout time.Duration

	AdminPort string
}

// Load loads the console configuration from the environment
func Load() *Config {
	return &Config{
		ServiceName: getEnv("OTEL_SERVICE_NAME", "inventory-console"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8000"),
		LiveURL:    getEnv("LIVE_URL", "ws://localhost:8000"),
		APIToken:   getEnv("API_TOKEN", ""),

		RequestTimeout:    getDuration("REQUEST_TIMEOUT", 10*time.Second),
		PollInterval:      getDuration("POLL_INTERVAL", 30*time.Second),
		ReconnectInterval: getDuration("RECONNECT_INTERVAL", time.Second),
		InactivityTimeout: getDuration("INACTIVITY_TIMEOUT", 10*time.Minute),

		AdminPort: getEnv("ADMIN_PORT", "8090"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
