package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port          string
	DBConn        string
	LogLevel      string
	JWTSecret     string
	RedisAddr     string
	RedisPassword string
	RateLimit     int
	RateWindow    time.Duration
	CORSOrigins   []string
	Env           string
}

// Production reports whether the service runs with production hardening
// (secure cookies).
func (c *Config) Production() bool {
	return c.Env == "production"
}

// NewConfig loads configuration from environment variables, reading a local
// .env file first if one exists.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "7500"),
		DBConn:        getEnv("DB_CONN", "host=localhost port=5432 user=notes password=notes dbname=notes sslmode=disable"),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CORSOrigins:   strings.Split(getEnv("CORS_ORIGINS", "http://localhost:5173"), ","),
		Env:           getEnv("ENV", "development"),
	}

	limit, err := strconv.Atoi(getEnv("RATE_LIMIT", "100"))
	if err != nil || limit <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT must be a positive integer")
	}
	cfg.RateLimit = limit

	window, err := strconv.Atoi(getEnv("RATE_WINDOW_SECONDS", "60"))
	if err != nil || window <= 0 {
		return nil, fmt.Errorf("RATE_WINDOW_SECONDS must be a positive integer")
	}
	cfg.RateWindow = time.Duration(window) * time.Second

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
