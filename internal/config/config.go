// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers a .env file, an optional YAML file and ARETE_ env vars on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Supported store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// AppPrefix prefixes every persisted key: <prefix>Username, <prefix>Data_<user>.
	AppPrefix string `koanf:"app_prefix"`

	// Timezone names the IANA location used to derive today's date key.
	Timezone string `koanf:"timezone"`

	// StoreDriver selects the key-value backend: memory, sqlite, postgres, redis.
	StoreDriver string `koanf:"store_driver"`

	SQLitePath    string `koanf:"sqlite_path"`
	PostgresDSN   string `koanf:"postgres_dsn"`
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// HistoryDays and TrendDays are the default window sizes of the
	// history table and the trend chart.
	HistoryDays int `koanf:"history_days"`
	TrendDays   int `koanf:"trend_days"`

	// MaxHistoryLimit caps ?limit and ?days on the history endpoints.
	MaxHistoryLimit int `koanf:"max_history_limit"`

	// PointWeights overrides catalog point weights by metric id.
	PointWeights map[string]float64 `koanf:"point_weights"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		AppPrefix:       "arete",
		Timezone:        "UTC",
		StoreDriver:     DriverMemory,
		SQLitePath:      "arete.db",
		RedisAddr:       "localhost:6379",
		HistoryDays:     7,
		TrendDays:       14,
		MaxHistoryLimit: 366,
		PointWeights:    map[string]float64{},
	}
}

// Location resolves Timezone. An empty value means UTC.
func (c *Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// Validate checks the values that cannot be defaulted later.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.AppPrefix) == "" {
		return fmt.Errorf("%w: app_prefix must not be empty", ErrInvalidConfig)
	}
	switch c.StoreDriver {
	case DriverMemory:
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path is required for the sqlite driver", ErrInvalidConfig)
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres_dsn is required for the postgres driver", ErrInvalidConfig)
		}
	case DriverRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	if c.HistoryDays <= 0 || c.TrendDays <= 0 {
		return fmt.Errorf("%w: history_days and trend_days must be positive", ErrInvalidConfig)
	}
	if c.MaxHistoryLimit < c.HistoryDays || c.MaxHistoryLimit < c.TrendDays {
		return fmt.Errorf("%w: max_history_limit must cover the default windows", ErrInvalidConfig)
	}
	for id, w := range c.PointWeights {
		if math.IsNaN(w) || w < 1 || w != math.Trunc(w) {
			return fmt.Errorf("%w: point_weights.%s must be a positive whole number, got %v", ErrInvalidConfig, id, w)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
