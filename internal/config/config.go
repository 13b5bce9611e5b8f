package config

import (
	"fmt"
	"log/slog"
	"time"
)

// ConsoleConfig is the root configuration for a console daemon instance.
type ConsoleConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	LogLevel string         `yaml:"log_level"` // "debug", "info", "warn", "error"
	Gateway  GatewayConfig  `yaml:"gateway"`
	Feeds    FeedsConfig    `yaml:"feeds"`
	Cache    CacheConfig    `yaml:"cache"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Health   HealthConfig   `yaml:"health"`
}

// InstanceConfig identifies this console instance.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// GatewayConfig holds Amadeus gateway settings.
type GatewayConfig struct {
	RestURL    string        `yaml:"rest_url"`
	WSURL      string        `yaml:"ws_url"`
	AuthToken  string        `yaml:"auth_token"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	RateLimit  float64       `yaml:"rate_limit"` // requests per second, 0 = unlimited
	RateBurst  int           `yaml:"rate_burst"`
}

// FeedsConfig holds realtime feed settings.
type FeedsConfig struct {
	// RetryAttempts is the reconnect budget per connection lifecycle.
	// -1 means retry forever; nil takes the default (forever).
	RetryAttempts *int          `yaml:"retry_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
	BufferSize    int           `yaml:"buffer_size"`
}

// CacheConfig holds the local snapshot cache settings.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ArchiveConfig holds the feed archive settings. The archive records
// every raw frame to Postgres for replay and audit.
type ArchiveConfig struct {
	Enabled       bool          `yaml:"enabled"`
	DB            DBConfig      `yaml:"db"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// SlogLevel maps the configured log level onto slog's levels.
func (c *ConsoleConfig) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
}
