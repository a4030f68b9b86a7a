package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const backendPostgres = "postgres"

// OpenPostgres connects to PostgreSQL, pings and ensures the table exists.
func OpenPostgres(ctx context.Context, dsn string, opts ...Option) (*SQLStore, error) {
	s := applyOptions(opts)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	configurePool(db, s)

	if err := ping(ctx, db, s.pingTimeout); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	st, err := newSQLStore(ctx, db, backendPostgres, s, func(i int) string { return fmt.Sprintf("$%d", i) })
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}
