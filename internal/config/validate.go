package config

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// Validate checks cross-field constraints that tag-level defaults cannot
// express. It is called by Load after parsing.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.RateLimitPerMin < 0 {
		return fmt.Errorf("server.rate_limit_per_min must not be negative")
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns %d exceeds max_conns %d",
			c.Database.MinConns, c.Database.MaxConns)
	}

	if c.Suggest.CacheTTL <= 0 {
		return fmt.Errorf("suggest.cache_ttl must be positive")
	}
	if c.Suggest.CacheSize <= 0 {
		return fmt.Errorf("suggest.cache_size must be positive")
	}
	if c.Suggest.SnapshotMaxAge <= 0 {
		return fmt.Errorf("suggest.snapshot_max_age must be positive")
	}
	if c.Suggest.FeedbackQueueSize <= 0 {
		return fmt.Errorf("suggest.feedback_queue_size must be positive")
	}

	if _, err := language.Parse(c.Suggest.Locale); err != nil {
		return fmt.Errorf("suggest.locale %q: %w", c.Suggest.Locale, err)
	}
	if _, err := currency.ParseISO(c.Suggest.Currency); err != nil {
		return fmt.Errorf("suggest.currency %q: %w", c.Suggest.Currency, err)
	}

	return nil
}
