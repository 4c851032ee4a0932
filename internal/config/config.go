package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Suggest  SuggestConfig  `yaml:"suggest"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	RateLimitPerMin int           `yaml:"rate_limit_per_min" env:"SERVER_RATE_LIMIT_PER_MIN" env-default:"300"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	Migrate         bool          `yaml:"migrate"            env:"DATABASE_MIGRATE"            env-default:"true"`
}

// SuggestConfig holds suggestion-engine settings.
type SuggestConfig struct {
	// CacheTTL is how long an aggregated result page is served from the
	// result cache before being recomputed.
	CacheTTL time.Duration `yaml:"cache_ttl" env:"SUGGEST_CACHE_TTL" env-default:"5m"`

	// CacheSize bounds the result cache; least-recently-used entries are
	// evicted past this many distinct prefixes.
	CacheSize int `yaml:"cache_size" env:"SUGGEST_CACHE_SIZE" env-default:"4096"`

	// SnapshotMaxAge is how long the catalog projection is reused before
	// the next access triggers a wholesale reload.
	SnapshotMaxAge time.Duration `yaml:"snapshot_max_age" env:"SUGGEST_SNAPSHOT_MAX_AGE" env-default:"10m"`

	// FeedbackQueueSize is the capacity of the selection-log hand-off
	// queue. When full, selections are dropped (best-effort contract).
	FeedbackQueueSize int `yaml:"feedback_queue_size" env:"SUGGEST_FEEDBACK_QUEUE_SIZE" env-default:"256"`

	// Locale and Currency drive price formatting on product suggestions.
	Locale   string `yaml:"locale"   env:"SUGGEST_LOCALE"   env-default:"en-US"`
	Currency string `yaml:"currency" env:"SUGGEST_CURRENCY" env-default:"USD"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings for the storefront origin.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}
