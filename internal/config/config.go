package config

import (
	"log/slog"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string
	Port        string
	LogLevel    string

	// Per-query deadline for board and account storage.
	QueryTimeout time.Duration
}

func Load() Config {
	return Config{
		DatabaseURL:  getEnvRequired("DATABASE_URL"),
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		QueryTimeout: getEnvDuration("QUERY_TIMEOUT", 5*time.Second),
	}
}

func getEnvRequired(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic("required environment variable " + key + " is not set")
	}
	return v
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "error", err)
			return fallback
		}
		return d
	}
	return fallback
}
