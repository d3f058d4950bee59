// Package store persists processed tables so repeated uploads of the same
// statement skip recomputation. Postgres is used when a database URL is
// configured, otherwise a local SQLite file.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"balance_insight/pkg/core/config"
	"balance_insight/pkg/core/ratio"
)

// Cache maps an input fingerprint to its processed table.
type Cache interface {
	Get(ctx context.Context, key string) (ratio.Table, bool, error)
	Put(ctx context.Context, key string, t ratio.Table) error
	Close() error
}

// Open picks the cache backend from cfg: Postgres when DatabaseURL is set,
// SQLite at CachePath otherwise. An empty CachePath without a database
// disables caching and returns a nil Cache.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DatabaseURL != "" {
		pool, err := Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		c, err := NewPGCache(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("result cache ready", "backend", "postgres")
		return c, nil
	}
	if cfg.CachePath == "" {
		logger.Info("result cache disabled")
		return nil, nil
	}
	c, err := OpenSQLite(cfg.CachePath)
	if err != nil {
		return nil, err
	}
	logger.Info("result cache ready", "backend", "sqlite", "path", cfg.CachePath)
	return c, nil
}

// Processor computes tables through the memo and cache layers. Both layers
// are optional; failures in them are logged and never change the result.
type Processor struct {
	Cache   Cache
	Memo    *ratio.Memo
	Markers ratio.Markers
	Logger  *slog.Logger
}

// Process returns the enriched table for rows.
func (p *Processor) Process(ctx context.Context, rows []ratio.LineItem) (ratio.Table, error) {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	markers := p.Markers.WithDefaults()
	key := ratio.Fingerprint(rows, markers)

	if t, ok := p.Memo.Get(key); ok {
		return t, nil
	}
	if p.Cache != nil {
		t, ok, err := p.Cache.Get(ctx, key)
		switch {
		case err != nil:
			log.Warn("cache lookup failed", "key", key, "error", err)
		case ok && len(t) == len(rows):
			log.Debug("cache hit", "key", key)
			return t, nil
		}
	}

	t, err := p.Memo.Process(rows, markers)
	if err != nil {
		return nil, err
	}

	if p.Cache != nil {
		if err := p.Cache.Put(ctx, key, t); err != nil {
			log.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return t, nil
}

func encodeTable(t ratio.Table) ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal table: %w", err)
	}
	return data, nil
}

func decodeTable(data []byte) (ratio.Table, error) {
	var t ratio.Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached table: %w", err)
	}
	return t, nil
}
