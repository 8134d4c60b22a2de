package config

import (
	"fmt"
	"time"
	// TIME_ZONE must resolve on images without a system zoneinfo database.
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the feedback service.
// Environment variables are parsed from the MOODMATE_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Persistence: auto picks postgres when a DSN is present, sqlite otherwise.
	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"moodmate.db"`

	// Quota ledger backend: store (same database as feedback) or redis.
	QuotaBackend  string `envconfig:"QUOTA_BACKEND" default:"store"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// AI provider
	AIProvider       string `envconfig:"AI_PROVIDER" default:"gemini"`
	GeminiAPIKey     string `envconfig:"GEMINI_API_KEY" default:""`
	GeminiModel      string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
	GeminiBaseURL    string `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	AITimeoutSeconds int    `envconfig:"AI_TIMEOUT_SECONDS" default:"30"`
	AIMaxRetries     int    `envconfig:"AI_MAX_RETRIES" default:"2"`

	// Feedback policy
	DailyFeedbackLimit int    `envconfig:"DAILY_FEEDBACK_LIMIT" default:"2"`
	MaxPeriodDays      int    `envconfig:"MAX_PERIOD_DAYS" default:"366"`
	TimeZone           string `envconfig:"TIME_ZONE" default:"Asia/Seoul"`

	// Auth
	JWTSecret string `envconfig:"JWT_SECRET" default:""`
	JWTIssuer string `envconfig:"JWT_ISSUER" default:"moodmate"`

	// Health
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`

	location *time.Location
}

// devJWTSecret signs development tokens when no secret is configured.
const devJWTSecret = "moodmate-dev-secret"

// ResolveDefaults validates enums and derives DBDriver when set to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	switch c.Environment {
	case EnvDevelopment, EnvTesting, EnvProduction:
	default:
		return fmt.Errorf("unsupported ENVIRONMENT: %s", c.Environment)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		if c.PostgresDSN != "" {
			c.DBDriver = "postgres"
		} else {
			c.DBDriver = "sqlite"
		}
	}
	allowedDB := map[string]bool{"postgres": true, "sqlite": true, "memory": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("DB_DRIVER=postgres requires POSTGRES_DSN")
	}

	if c.QuotaBackend == "" {
		c.QuotaBackend = "store"
	}
	if c.QuotaBackend != "store" && c.QuotaBackend != "redis" {
		return fmt.Errorf("unsupported QUOTA_BACKEND: %s", c.QuotaBackend)
	}

	switch c.AIProvider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("AI_PROVIDER=gemini requires GEMINI_API_KEY")
		}
	case "static":
	default:
		return fmt.Errorf("unsupported AI_PROVIDER: %s", c.AIProvider)
	}

	if c.DailyFeedbackLimit < 1 {
		return fmt.Errorf("DAILY_FEEDBACK_LIMIT must be >= 1, got %d", c.DailyFeedbackLimit)
	}
	if c.MaxPeriodDays <= 0 {
		return fmt.Errorf("MAX_PERIOD_DAYS must be > 0, got %d", c.MaxPeriodDays)
	}
	if c.AITimeoutSeconds <= 0 {
		return fmt.Errorf("AI_TIMEOUT_SECONDS must be > 0, got %d", c.AITimeoutSeconds)
	}

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid TIME_ZONE %q: %w", c.TimeZone, err)
	}
	c.location = loc

	if c.JWTSecret == "" {
		if c.Environment == EnvProduction {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		c.JWTSecret = devJWTSecret
	}
	return nil
}

// New creates a new Config by parsing environment variables
// Example: MOODMATE_POSTGRES_DSN, MOODMATE_HTTP_PORT
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("MOODMATE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("db_driver", cfg.DBDriver).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Str("quota_backend", cfg.QuotaBackend).
		Str("ai_provider", cfg.AIProvider).
		Str("gemini_model", cfg.GeminiModel).
		Int("daily_feedback_limit", cfg.DailyFeedbackLimit).
		Str("time_zone", cfg.TimeZone).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	cfg := &Config{
		Environment:               EnvTesting,
		HTTPPort:                  8080,
		DBDriver:                  "memory",
		QuotaBackend:              "store",
		AIProvider:                "static",
		GeminiModel:               "gemini-1.5-flash",
		AITimeoutSeconds:          5,
		DailyFeedbackLimit:        2,
		MaxPeriodDays:             366,
		TimeZone:                  "UTC",
		JWTSecret:                 "test-secret",
		JWTIssuer:                 "moodmate",
		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
	}
	cfg.location = time.UTC
	return cfg
}

// IsDevelopment returns true if the environment is set to development
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Location returns the time zone used to derive calendar dates.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		if loc, err := time.LoadLocation(c.TimeZone); err == nil {
			c.location = loc
		} else {
			c.location = time.UTC
		}
	}
	return c.location
}

// AITimeout bounds each individual AI call.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AITimeoutSeconds) * time.Second
}

// HealthInterval is the period between background health probes.
func (c *Config) HealthInterval() time.Duration {
	return time.Duration(c.HealthIntervalSeconds) * time.Second
}

// HealthProbeTimeout bounds a single health probe.
func (c *Config) HealthProbeTimeout() time.Duration {
	return time.Duration(c.HealthProbeTimeoutSeconds) * time.Second
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
