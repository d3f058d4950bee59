package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"balance_insight/pkg/core/ratio"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS ratio_tables (
	fingerprint TEXT PRIMARY KEY,
	row_count   INTEGER NOT NULL,
	data        JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PGCache stores tables in Postgres.
type PGCache struct {
	pool *pgxpool.Pool
}

// NewPGCache creates the cache table if needed.
func NewPGCache(ctx context.Context, pool *pgxpool.Pool) (*PGCache, error) {
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		return nil, fmt.Errorf("failed to create ratio_tables: %w", err)
	}
	return &PGCache{pool: pool}, nil
}

func (c *PGCache) Get(ctx context.Context, key string) (ratio.Table, bool, error) {
	query := `
		SELECT data
		FROM ratio_tables
		WHERE fingerprint = $1
	`
	var data []byte
	err := c.pool.QueryRow(ctx, query, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query ratio_tables: %w", err)
	}
	t, err := decodeTable(data)
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

func (c *PGCache) Put(ctx context.Context, key string, t ratio.Table) error {
	data, err := encodeTable(t)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO ratio_tables (fingerprint, row_count, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (fingerprint)
		DO UPDATE SET
			data = EXCLUDED.data,
			row_count = EXCLUDED.row_count,
			updated_at = NOW()
	`
	if _, err := c.pool.Exec(ctx, query, key, len(t), data); err != nil {
		return fmt.Errorf("failed to save to ratio_tables: %w", err)
	}
	return nil
}

func (c *PGCache) Close() error {
	c.pool.Close()
	return nil
}
