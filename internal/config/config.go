// Package config defines the service configuration and how it is loaded.
//
// Values are layered from defaults, an optional YAML file and COURTSIDE_
// environment variables, in increasing precedence.
package config

import (
	"log/slog"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// DBDriver selects the database/sql driver: "sqlite" or "postgres".
	DBDriver string `koanf:"db_driver"`
	// DBDSN is the data source name, e.g. "nba.db" or a postgres:// URL.
	DBDSN           string        `koanf:"db_dsn"`
	DBMaxOpenConns  int           `koanf:"db_max_open_conns"`
	DBMaxIdleConns  int           `koanf:"db_max_idle_conns"`
	QueryTimeout    time.Duration `koanf:"query_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RedisURL enables memoization when set, e.g. "redis://localhost:6379/0".
	RedisURL string        `koanf:"redis_url"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
	// RefreshEpoch is folded into every cache key; bump it after the store is reloaded.
	RefreshEpoch string `koanf:"refresh_epoch"`

	RESTAddr string `koanf:"rest_addr"`
	WSAddr   string `koanf:"ws_addr"`

	// CORSAllowOrigins is a comma-separated origin list; "*" allows any.
	CORSAllowOrigins string `koanf:"cors_allow_origins"`

	RateLimitEnabled  bool          `koanf:"rate_limit_enabled"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		DBDriver:          "sqlite",
		DBDSN:             "nba.db",
		DBMaxOpenConns:    20,
		DBMaxIdleConns:    5,
		QueryTimeout:      5 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		CacheTTL:          10 * time.Minute,
		RefreshEpoch:      "2022-23",
		RESTAddr:          ":8080",
		WSAddr:            ":8081",
		CORSAllowOrigins:  "*",
		RateLimitEnabled:  true,
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// AllowedOrigins splits CORSAllowOrigins into its entries.
func (c *Config) AllowedOrigins() []string {
	origins := make([]string, 0)
	for _, o := range strings.Split(c.CORSAllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
