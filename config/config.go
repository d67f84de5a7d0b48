// Package config provides configuration for the gateway and the terminal client.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds the gateway and client configuration.
type Config struct {
	// Server settings
	Port        int
	FrontendURL string
	BodyLimit   string

	// Upstream RAG service
	PythonAPIURL    string
	UpstreamTimeout time.Duration

	// Rate limiting
	RateLimitWindow time.Duration
	RateLimitMax    int
	RedisAddr       string

	// Logging
	LogLevel  string
	LogFormat string

	// Terminal client
	DBPath           string
	APIURL           string
	SessionRulesFile string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		Port:             getEnvInt("PORT", 3001),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:3000"),
		BodyLimit:        getEnv("BODY_LIMIT", "10M"),
		PythonAPIURL:     getEnv("PYTHON_API_URL", "http://localhost:5000"),
		UpstreamTimeout:  time.Duration(getEnvInt("UPSTREAM_TIMEOUT_MS", 30000)) * time.Millisecond,
		RateLimitWindow:  time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MS", 60000)) * time.Millisecond,
		RateLimitMax:     getEnvInt("RATE_LIMIT_MAX", 30),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		DBPath:           getEnv("KISAAN_DB", defaultDBPath()),
		APIURL:           getEnv("KISAAN_API_URL", "http://localhost:3001/api"),
		SessionRulesFile: getEnv("SESSION_RULES_FILE", ""),
	}
	return cfg
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "kisaan.db"
	}
	return filepath.Join(home, ".kisaan", "kisaan.db")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
