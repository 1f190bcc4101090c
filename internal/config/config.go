package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the analytics service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, honoring container and env overrides.
func (c ServerConfig) GetHost() string {
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig holds the event-store connection settings.
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig holds the result-cache connection settings.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	DB      int    `yaml:"db"`
}

// AnalyticsConfig holds tunables for the attribution/LTV/RFM calculations.
type AnalyticsConfig struct {
	// DefaultModel is the attribution model used when a caller doesn't
	// specify one. Unknown model names also resolve to last_touch.
	DefaultModel string `yaml:"default_model"`

	// DecayHalfLifeDays is the time-decay half-life. A touch this many days
	// before the last touch carries half its weight.
	DecayHalfLifeDays float64 `yaml:"decay_half_life_days"`

	// PredictionMonths is the forward horizon for predicted LTV.
	PredictionMonths int `yaml:"prediction_months"`

	// DashboardCacheTTLSeconds controls how long computed dashboard payloads
	// are served from Redis before being recomputed.
	DashboardCacheTTLSeconds int `yaml:"dashboard_cache_ttl_seconds"`
}

// DashboardCacheTTL returns the dashboard cache TTL as a duration.
func (c AnalyticsConfig) DashboardCacheTTL() time.Duration {
	return time.Duration(c.DashboardCacheTTLSeconds) * time.Second
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// Load reads configuration from a YAML file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from a YAML file with environment variable
// overrides. A .env file in the working directory is honored if present.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
	}
	if model := os.Getenv("ATTRIBUTION_DEFAULT_MODEL"); model != "" {
		cfg.Analytics.DefaultModel = model
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Analytics.DefaultModel == "" {
		c.Analytics.DefaultModel = "last_touch"
	}
	if c.Analytics.DecayHalfLifeDays == 0 {
		c.Analytics.DecayHalfLifeDays = 7
	}
	if c.Analytics.PredictionMonths == 0 {
		c.Analytics.PredictionMonths = 12
	}
	if c.Analytics.DashboardCacheTTLSeconds == 0 {
		c.Analytics.DashboardCacheTTLSeconds = 300
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
