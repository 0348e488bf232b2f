package config

import (
	"time"
)

// Config is the complete starlens configuration, merged from defaults,
// an optional YAML config file, and STARLENS_* environment variables.
type Config struct {
	GitHub     GitHubConfig     `mapstructure:"github"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Retry      RetryConfig      `mapstructure:"retry"`
	Store      StoreConfig      `mapstructure:"store"`
	Output     OutputConfig     `mapstructure:"output"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Categories CategoriesConfig `mapstructure:"categories"`
}

// GitHubConfig contains API client configuration. The token is treated
// as opaque and never logged in full.
type GitHubConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Token     string        `mapstructure:"token"`
	User      string        `mapstructure:"user"`
	UserAgent string        `mapstructure:"user_agent"`
	PageSize  int           `mapstructure:"page_size"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// RateLimitConfig shapes the local token bucket before the first
// server observation arrives.
type RateLimitConfig struct {
	Capacity        int           `mapstructure:"capacity"`
	RefillPerSecond float64       `mapstructure:"refill_per_second"`
	WaitCeiling     time.Duration `mapstructure:"wait_ceiling"`
}

// RetryConfig controls client retry behavior.
type RetryConfig struct {
	MaxRetries     int           `mapstructure:"max_retries"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
	Multiplier     float64       `mapstructure:"multiplier"`
}

// StoreConfig contains database configuration for libsql/Turso.
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// OutputConfig selects the default rendering format.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// ServerConfig contains the report server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level controls the minimum log level.
	// Valid values: debug, info, warn, error
	Level string `mapstructure:"level"`
}

// CategoriesConfig points at a user rule file; empty selects the
// built-in category table.
type CategoriesConfig struct {
	RulesFile string `mapstructure:"rules_file"`
}
