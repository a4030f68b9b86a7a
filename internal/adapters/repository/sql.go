package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLStore keeps keys in a two-column table. The SQLite and PostgreSQL
// backends share it and differ only in driver and placeholders.
type SQLStore struct {
	db      *sql.DB
	backend string

	getQuery    string
	setQuery    string
	deleteQuery string
}

func newSQLStore(ctx context.Context, db *sql.DB, backend string, s settings, placeholder func(int) string) (*SQLStore, error) {
	if !validIdentifier(s.table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, s.table)
	}
	st := &SQLStore{
		db:      db,
		backend: backend,
		getQuery: fmt.Sprintf("SELECT value FROM %s WHERE key = %s",
			s.table, placeholder(1)),
		setQuery: fmt.Sprintf("INSERT INTO %s (key, value) VALUES (%s, %s) ON CONFLICT (key) DO UPDATE SET value = excluded.value",
			s.table, placeholder(1), placeholder(2)),
		deleteQuery: fmt.Sprintf("DELETE FROM %s WHERE key = %s",
			s.table, placeholder(1)),
	}
	schema := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value TEXT NOT NULL)", s.table)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("%s: ensure schema: %w", backend, err)
	}
	return st, nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, key string) (v string, err error) {
	defer func(start time.Time) { observe(s.backend, opGet, start, err) }(time.Now())

	err = s.db.QueryRowContext(ctx, s.getQuery, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%s: get %q: %w", s.backend, key, err)
	}
	return v, nil
}

// Set implements Store.
func (s *SQLStore) Set(ctx context.Context, key, value string) (err error) {
	defer func(start time.Time) { observe(s.backend, opSet, start, err) }(time.Now())

	if _, err = s.db.ExecContext(ctx, s.setQuery, key, value); err != nil {
		return fmt.Errorf("%s: set %q: %w", s.backend, key, err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLStore) Delete(ctx context.Context, key string) (err error) {
	defer func(start time.Time) { observe(s.backend, opDelete, start, err) }(time.Now())

	if _, err = s.db.ExecContext(ctx, s.deleteQuery, key); err != nil {
		return fmt.Errorf("%s: delete %q: %w", s.backend, key, err)
	}
	return nil
}

// Name implements Store.
func (s *SQLStore) Name() string { return s.backend }

// Close implements Store.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func configurePool(db *sql.DB, s settings) {
	db.SetMaxOpenConns(s.maxOpenConns)
	db.SetMaxIdleConns(s.maxIdleConns)
	db.SetConnMaxLifetime(s.connMaxLifetime)
}

func ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return db.PingContext(ctx)
}

// validIdentifier accepts [A-Za-z_][A-Za-z0-9_]*.
func validIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
