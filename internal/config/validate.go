package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *ConsoleConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	if !strings.HasPrefix(c.Gateway.WSURL, "ws://") && !strings.HasPrefix(c.Gateway.WSURL, "wss://") {
		return fmt.Errorf("gateway.ws_url must start with ws:// or wss://, got %q", c.Gateway.WSURL)
	}
	if c.Gateway.RateLimit < 0 {
		return errors.New("gateway.rate_limit must be >= 0")
	}

	if c.Feeds.RetryAttempts != nil && *c.Feeds.RetryAttempts < -1 {
		return fmt.Errorf("feeds.retry_attempts must be >= -1, got %d", *c.Feeds.RetryAttempts)
	}
	if c.Feeds.RetryDelay <= 0 {
		return errors.New("feeds.retry_delay must be > 0")
	}
	if c.Feeds.BufferSize < 1 {
		return errors.New("feeds.buffer_size must be >= 1")
	}

	if c.Archive.Enabled {
		if err := c.Archive.DB.validate("archive.db"); err != nil {
			return err
		}
		if c.Archive.BatchSize < 1 {
			return errors.New("archive.batch_size must be >= 1")
		}
		if c.Archive.FlushInterval <= 0 {
			return errors.New("archive.flush_interval must be > 0")
		}
	}

	if c.Health.Port < 1 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 1 and 65535, got %d", c.Health.Port)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
