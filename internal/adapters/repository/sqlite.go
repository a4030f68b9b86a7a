package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const backendSQLite = "sqlite"

// OpenSQLite opens or creates a SQLite database file at path.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLStore, error) {
	s := applyOptions(opts)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve sqlite path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure sqlite dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", absPath, defaultBusyTimeoutMS)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; WAL lets readers proceed.
	db.SetMaxOpenConns(1)

	if err := ping(ctx, db, s.pingTimeout); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	st, err := newSQLStore(ctx, db, backendSQLite, s, func(int) string { return "?" })
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}
