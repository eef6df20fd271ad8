package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/storefront-core/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage keeps values in the client_state table. Payloads are
// bytea so a malformed blob can still be stored and later rejected on load.
type PostgresStorage struct {
	Pool *pgxpool.Pool
}

func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{Pool: pool}
}

func (r *PostgresStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := r.Pool.QueryRow(ctx, `SELECT payload FROM client_state WHERE key = $1`, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select %s: %w", key, err)
	}
	return payload, true, nil
}

func (r *PostgresStorage) Put(ctx context.Context, key string, value []byte) error {
	_, err := r.Pool.Exec(ctx, `INSERT INTO client_state(key, payload) VALUES($1, $2)
        ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`, key, value)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (r *PostgresStorage) Delete(ctx context.Context, key string) error {
	if _, err := r.Pool.Exec(ctx, `DELETE FROM client_state WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

var _ domain.Storage = (*PostgresStorage)(nil)

// EnsureSchema creates the state table if it is missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS client_state (
  key text PRIMARY KEY,
  payload bytea NOT NULL,
  updated_at timestamptz NOT NULL DEFAULT now()
);`)
	return err
}
