package repository

import "time"

// Default connection settings for the SQL and redis backends.
const (
	defaultTable           = "arete_kv"
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5 * time.Minute
	defaultPingTimeout     = 5 * time.Second
	defaultBusyTimeoutMS   = 5000
)

type settings struct {
	table           string
	maxOpenConns    int
	maxIdleConns    int
	connMaxLifetime time.Duration
	pingTimeout     time.Duration
	namespace       string
}

func defaultSettings() settings {
	return settings{
		table:           defaultTable,
		maxOpenConns:    defaultMaxOpenConns,
		maxIdleConns:    defaultMaxIdleConns,
		connMaxLifetime: defaultConnMaxLifetime,
		pingTimeout:     defaultPingTimeout,
	}
}

func applyOptions(opts []Option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option applies a configuration option to a backend.
type Option func(*settings)

// WithTable sets the SQL table holding key-value rows.
func WithTable(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.table = name
		}
	}
}

// WithPool sets SQL connection pool limits.
func WithPool(maxOpen, maxIdle int, maxLifetime time.Duration) Option {
	return func(s *settings) {
		if maxOpen > 0 {
			s.maxOpenConns = maxOpen
		}
		if maxIdle >= 0 {
			s.maxIdleConns = maxIdle
		}
		if maxLifetime > 0 {
			s.connMaxLifetime = maxLifetime
		}
	}
}

// WithPingTimeout bounds the connectivity check done on open.
func WithPingTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.pingTimeout = d
		}
	}
}

// WithNamespace prefixes every redis key with "<ns>:".
func WithNamespace(ns string) Option {
	return func(s *settings) {
		s.namespace = ns
	}
}
