package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv     string
	Port        string
	JWTSecret   string
	LogLevel    string
	FrontendDir string
	RedisURL    string
	Database    DatabaseConfig
	AI          AIConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Debug    bool
}

// AIConfig holds settings for the extraction stage
type AIConfig struct {
	DefaultModel   string
	MaxConcurrency int
	RequestTimeout time.Duration
	MaxImageEdge   int
	RatePerMinute  int
}

// IsProduction reports whether NODE_ENV is production
func (c *Config) IsProduction() bool {
	return c.NodeEnv == "production"
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	timeout, err := time.ParseDuration(getEnv("AI_REQUEST_TIMEOUT", "90s"))
	if err != nil {
		return nil, fmt.Errorf("invalid AI_REQUEST_TIMEOUT: %w", err)
	}

	return &Config{
		NodeEnv:     getEnv("NODE_ENV", "development"),
		Port:        getEnv("PORT", "3210"),
		JWTSecret:   jwtSecret,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendDir: os.Getenv("FRONTEND_DIR"),
		RedisURL:    os.Getenv("REDIS_URL"),
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "receiptdesk"),
			Debug:    getEnv("DB_DEBUG", "false") == "true",
		},
		AI: AIConfig{
			DefaultModel:   getEnv("AI_DEFAULT_MODEL", "gemini-2.5-flash"),
			MaxConcurrency: getEnvInt("AI_MAX_CONCURRENCY", 4),
			RequestTimeout: timeout,
			MaxImageEdge:   getEnvInt("AI_MAX_IMAGE_EDGE", 2048),
			RatePerMinute:  getEnvInt("AI_RATE_PER_MINUTE", 30),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
