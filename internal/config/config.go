// Package config loads the service configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds every tunable of the take6d process.
type Config struct {
	GatewayURL     string
	GatewayTimeout time.Duration
	GatewayRetries int
	GatewayBackoff time.Duration
	Algorithm      string
	RedisAddr      string // empty disables the historian
	DatabaseURL    string // empty disables persistence
	LogLevel       logrus.Level
}

// Load reads .env (when present) and the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, reading environment variables")
	}

	cfg := Config{
		GatewayURL:     getEnv("AI_GATEWAY_URL", "http://localhost:8000/"),
		GatewayTimeout: time.Duration(getEnvInt("AI_GATEWAY_TIMEOUT_MS", 5000)) * time.Millisecond,
		GatewayRetries: getEnvInt("AI_GATEWAY_RETRIES", 2),
		GatewayBackoff: time.Duration(getEnvInt("AI_GATEWAY_BACKOFF_MS", 250)) * time.Millisecond,
		Algorithm:      getEnv("AI_ALGO", "expectiminimax"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		LogLevel:       logrus.InfoLevel,
	}

	if lvl, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		cfg.LogLevel = lvl
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
