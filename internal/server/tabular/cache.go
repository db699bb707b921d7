package tabular

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	table     *Table
	fetchedAt time.Time
}

// Cached memoizes ReadAll per table for a fixed TTL. Every mutating call
// invalidates the affected table before returning, so the next read sees
// the write even inside the TTL window.
type Cached struct {
	next Store
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
	// generations guard against a read that started before an invalidation
	// repopulating the cache with pre-write rows.
	generations map[string]uint64
	epoch       uint64
}

func NewCached(next Store, ttl time.Duration) *Cached {
	return &Cached{
		next:        next,
		ttl:         ttl,
		now:         time.Now,
		entries:     make(map[string]cacheEntry),
		generations: make(map[string]uint64),
	}
}

func (c *Cached) ReadAll(ctx context.Context, table string) (*Table, error) {
	c.mu.Lock()
	if e, ok := c.entries[table]; ok && c.now().Sub(e.fetchedAt) < c.ttl {
		c.mu.Unlock()
		return e.table.Clone(), nil
	}
	gen, epoch := c.generations[table], c.epoch
	c.mu.Unlock()

	t, err := c.next.ReadAll(ctx, table)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.generations[table] == gen && c.epoch == epoch {
		c.entries[table] = cacheEntry{table: t.Clone(), fetchedAt: c.now()}
	}
	c.mu.Unlock()

	return t, nil
}

func (c *Cached) AppendRows(ctx context.Context, table string, rows [][]string) error {
	defer c.Invalidate(table)
	return c.next.AppendRows(ctx, table, rows)
}

func (c *Cached) UpdateCell(ctx context.Context, table string, rowIndex int, column, value string) error {
	defer c.Invalidate(table)
	return c.next.UpdateCell(ctx, table, rowIndex, column, value)
}

func (c *Cached) EnsureTable(ctx context.Context, table string, header []string) error {
	defer c.Invalidate(table)
	return c.next.EnsureTable(ctx, table, header)
}

// Invalidate drops the cached rows of table.
func (c *Cached) Invalidate(table string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, table)
	c.generations[table]++
}

// InvalidateAll drops every cached table.
func (c *Cached) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.entries = make(map[string]cacheEntry)
}
