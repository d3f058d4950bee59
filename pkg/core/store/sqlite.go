package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver

	"balance_insight/pkg/core/ratio"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS ratio_tables (
    fingerprint TEXT PRIMARY KEY,
    row_count   INTEGER NOT NULL,
    data        TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);
`

// SQLiteCache stores tables in a local SQLite file.
type SQLiteCache struct {
	db *sql.DB
}

// OpenSQLite opens or creates the cache database at dbPath.
func OpenSQLite(dbPath string) (*SQLiteCache, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) Get(ctx context.Context, key string) (ratio.Table, bool, error) {
	var data string
	err := c.db.QueryRowContext(ctx, "SELECT data FROM ratio_tables WHERE fingerprint = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	t, err := decodeTable([]byte(data))
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

func (c *SQLiteCache) Put(ctx context.Context, key string, t ratio.Table) error {
	data, err := encodeTable(t)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx, `INSERT OR REPLACE INTO ratio_tables
		(fingerprint, row_count, data, updated_at)
		VALUES (?, ?, ?, ?)`,
		key, len(t), string(data), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Count returns the number of stored tables.
func (c *SQLiteCache) Count(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ratio_tables").Scan(&n)
	return n, err
}

// Close closes the cache database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
