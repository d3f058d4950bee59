package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"balance_insight/pkg/core/config"
	"balance_insight/pkg/core/ratio"
)

func sampleRows() []ratio.LineItem {
	return []ratio.LineItem{
		{Label: "TÀI SẢN NGẮN HẠN", Prior: 400, Current: 500},
		{Label: "TỔNG CỘNG TÀI SẢN", Prior: 800, Current: 1000},
	}
}

func TestSQLiteCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "cache.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer c.Close()

	if _, ok, err := c.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	table, err := ratio.Process(sampleRows(), ratio.DefaultMarkers())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Put(ctx, "k1", table); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := c.Put(ctx, "k1", table); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	got, ok, err := c.Get(ctx, "k1")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != len(table) {
		t.Fatalf("expected %d rows, got %d", len(table), len(got))
	}
	for i := range table {
		if got[i] != table[i] {
			t.Errorf("row %d: expected %+v, got %+v", i, table[i], got[i])
		}
	}
	if n, _ := c.Count(ctx); n != 1 {
		t.Errorf("expected one stored table, got %d", n)
	}
}

type countingCache struct {
	entries map[string]ratio.Table
	gets    int
	puts    int
	fail    bool
}

func (c *countingCache) Get(ctx context.Context, key string) (ratio.Table, bool, error) {
	c.gets++
	if c.fail {
		return nil, false, errors.New("cache down")
	}
	t, ok := c.entries[key]
	return t, ok, nil
}

func (c *countingCache) Put(ctx context.Context, key string, t ratio.Table) error {
	c.puts++
	if c.fail {
		return errors.New("cache down")
	}
	c.entries[key] = t
	return nil
}

func (c *countingCache) Close() error { return nil }

func TestProcessor_UsesLayers(t *testing.T) {
	ctx := context.Background()
	cache := &countingCache{entries: map[string]ratio.Table{}}
	p := &Processor{Cache: cache, Memo: ratio.NewMemo(4)}

	first, err := p.Process(ctx, sampleRows())
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if cache.puts != 1 {
		t.Errorf("expected one cache write, got %d", cache.puts)
	}

	second, err := p.Process(ctx, sampleRows())
	if err != nil {
		t.Fatal(err)
	}
	if cache.gets != 1 {
		t.Errorf("memo hit must skip the cache, got %d lookups", cache.gets)
	}
	if len(first) != len(second) || first[0] != second[0] {
		t.Errorf("results differ between calls")
	}
}

func TestProcessor_CacheFailureDoesNotChangeResult(t *testing.T) {
	p := &Processor{Cache: &countingCache{fail: true}}
	got, err := p.Process(context.Background(), sampleRows())
	if err != nil {
		t.Fatalf("cache failure must not fail processing: %v", err)
	}
	want, _ := ratio.Process(sampleRows(), ratio.DefaultMarkers())
	if got[0] != want[0] {
		t.Errorf("expected %+v, got %+v", want[0], got[0])
	}
}

func TestProcessor_ValidationErrorPassesThrough(t *testing.T) {
	p := &Processor{Memo: ratio.NewMemo(4)}
	_, err := p.Process(context.Background(), []ratio.LineItem{{Label: "Cash", Prior: 1, Current: 2}})
	var verr *ratio.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestOpen_Selection(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	cfg.CachePath = ""
	c, err := Open(ctx, cfg, nil)
	if err != nil || c != nil {
		t.Errorf("expected caching disabled, got %v, %v", c, err)
	}

	cfg.CachePath = filepath.Join(t.TempDir(), "cache.db")
	c, err = Open(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer c.Close()
	if _, ok := c.(*SQLiteCache); !ok {
		t.Errorf("expected SQLite backend, got %T", c)
	}
}
