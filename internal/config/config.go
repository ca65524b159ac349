// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv         string
	Port           string
	LogLevel       string
	LogFormat      string
	ServiceVersion string

	// Club
	ClubTimezone   string
	OrganizationID int64
	SeedPlans      bool

	// Database
	DatabaseDriver string
	DatabaseURL    string

	// Redis, optional: enables cross-process locking
	RedisURL string

	// RabbitMQ, optional: enables broker publishing
	RabbitMQURL      string
	BreakerThreshold int
	BreakerTimeout   time.Duration

	// Tracing, optional: enables OTLP export
	OTLPEndpoint string

	// HTTP
	AllowedOrigins     []string
	RateLimitPerMinute int
	ShutdownTimeout    time.Duration

	// CLI
	APIURL string
}

// Load loads configuration from a .env file, if any, and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", ""),
		ServiceVersion: getEnv("SERVICE_VERSION", "dev"),

		ClubTimezone:   getEnv("CLUB_TIMEZONE", "Europe/Moscow"),
		OrganizationID: int64(getIntEnv("ORGANIZATION_ID", 1)),
		SeedPlans:      getBoolEnv("SEED_DEFAULT_PLANS", true),

		DatabaseDriver: getEnv("DATABASE_DRIVER", "memory"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		RedisURL: getEnv("REDIS_URL", ""),

		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		BreakerThreshold: getIntEnv("BREAKER_THRESHOLD", 5),
		BreakerTimeout:   getDurationEnv("BREAKER_TIMEOUT", 30*time.Second),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		AllowedOrigins:     getListEnv("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		RateLimitPerMinute: getIntEnv("RATE_LIMIT_PER_MINUTE", 120),
		ShutdownTimeout:    getDurationEnv("SHUTDOWN_TIMEOUT", 15*time.Second),

		APIURL: getEnv("API_URL", "http://localhost:8080"),
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
		if cfg.IsProduction() {
			cfg.LogFormat = "json"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "memory":
	case "postgres", "sqlite":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for driver %q", c.DatabaseDriver)
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	return nil
}

// Location resolves the club's time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ClubTimezone)
	if err != nil {
		return nil, fmt.Errorf("CLUB_TIMEZONE %q: %w", c.ClubTimezone, err)
	}
	return loc, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
