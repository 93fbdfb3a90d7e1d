package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath   string
	MigrationsPath string

	// MetricsAddr is the optional listen address for the Prometheus
	// endpoint. Empty disables it (the engine itself never opens sockets).
	MetricsAddr string

	// PhoneCountryCode is the dialing code used when normalizing local
	// phone numbers, without the leading "+".
	PhoneCountryCode string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath:     getEnv("DATABASE_PATH", "gymflow.db"),
		MigrationsPath:   getEnv("MIGRATIONS_PATH", "migrations"),
		MetricsAddr:      getEnv("METRICS_ADDR", ""),
		PhoneCountryCode: getEnv("PHONE_COUNTRY_CODE", "20"),
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
