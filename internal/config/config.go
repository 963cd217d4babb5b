package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	ServerPort  int
	DataPath    string // Base path for the store engine's files
	StoreEngine string // "badger" or "memory"
	JWTSecret   string
	TokenTTL    time.Duration
	SeedUsers   string // "user:pass,user:pass" provisioned at startup
	GCSchedule  string // cron expression for store maintenance
	LogLevel    string
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
	}

	ttlStr := getEnv("TOKEN_TTL", "24h")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", ttlStr, err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return &Config{
		ServerPort:  port,
		DataPath:    getEnv("DATA_PATH", "./data"),
		StoreEngine: getEnv("STORE_ENGINE", "badger"),
		JWTSecret:   secret,
		TokenTTL:    ttl,
		SeedUsers:   os.Getenv("SEED_USERS"),
		GCSchedule:  getEnv("GC_SCHEDULE", "@every 10m"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
