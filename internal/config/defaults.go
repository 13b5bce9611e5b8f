package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultLogLevel       = "info"
	DefaultRestURL        = "https://gateway.amadeus.internal"
	DefaultWSURL          = "wss://gateway.amadeus.internal"
	DefaultGatewayTimeout = 30 * time.Second
	DefaultMaxRetries     = 3
	DefaultRateBurst      = 5
	DefaultRetryAttempts  = -1 // retry forever
	DefaultRetryDelay     = 1 * time.Second
	DefaultBufferSize     = 256
	DefaultCachePath      = "data/snapshots.db"
	DefaultDBPort         = 5432
	DefaultDBSSLMode      = "prefer"
	DefaultMaxConns       = 10
	DefaultMinConns       = 2
	DefaultBatchSize      = 500
	DefaultFlushInterval  = 1 * time.Second
	DefaultHealthPort     = 8090
	DefaultHealthPath     = "/healthz"
)

func (c *ConsoleConfig) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Gateway.RestURL == "" {
		c.Gateway.RestURL = DefaultRestURL
	}
	if c.Gateway.WSURL == "" {
		c.Gateway.WSURL = DefaultWSURL
	}
	if c.Gateway.Timeout == 0 {
		c.Gateway.Timeout = DefaultGatewayTimeout
	}
	if c.Gateway.MaxRetries == 0 {
		c.Gateway.MaxRetries = DefaultMaxRetries
	}
	if c.Gateway.RateLimit > 0 && c.Gateway.RateBurst == 0 {
		c.Gateway.RateBurst = DefaultRateBurst
	}

	if c.Feeds.RetryAttempts == nil {
		attempts := DefaultRetryAttempts
		c.Feeds.RetryAttempts = &attempts
	}
	if c.Feeds.RetryDelay == 0 {
		c.Feeds.RetryDelay = DefaultRetryDelay
	}
	if c.Feeds.BufferSize == 0 {
		c.Feeds.BufferSize = DefaultBufferSize
	}

	if c.Cache.Path == "" {
		c.Cache.Path = DefaultCachePath
	}

	if c.Archive.Enabled {
		applyDBDefaults(&c.Archive.DB)
		if c.Archive.BatchSize == 0 {
			c.Archive.BatchSize = DefaultBatchSize
		}
		if c.Archive.FlushInterval == 0 {
			c.Archive.FlushInterval = DefaultFlushInterval
		}
	}

	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
	if c.Health.Path == "" {
		c.Health.Path = DefaultHealthPath
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
