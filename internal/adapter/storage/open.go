package storage

import (
	"context"
	"fmt"

	"github.com/example/storefront-core/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open builds the backend named by driver. target is a directory for file,
// a database path for sqlite and a connection URL for postgres. The returned
// func releases the backend.
func Open(ctx context.Context, driver, target string) (domain.Storage, func(), error) {
	switch driver {
	case "", DriverMemory:
		return NewMemoryStorage(), func() {}, nil
	case DriverFile:
		fs, err := NewFileStorage(target)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	case DriverSQLite:
		s, err := NewSQLiteStorage(target)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case DriverPostgres:
		pool, err := pgxpool.New(ctx, target)
		if err != nil {
			return nil, nil, fmt.Errorf("db connect: %w", err)
		}
		if err := EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("init schema: %w", err)
		}
		return NewPostgresStorage(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
