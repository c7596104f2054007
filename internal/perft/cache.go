package perft

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
)

// DefaultCacheEntries is the capacity used when NewCache gets zero.
const DefaultCacheEntries = 1 << 20

// cacheEntry keeps the full hash and depth so a slot reused by another
// position is never mistaken for a hit.
type cacheEntry struct {
	hash  uint64
	depth int
	nodes uint64
}

// Cache is a bounded subtree-count cache. Writes are buffered, so a value
// may not be visible to Get until Wait returns.
type Cache struct {
	c *ristretto.Cache[uint64, cacheEntry]
}

// NewCache returns a cache holding about maxEntries subtree counts.
func NewCache(maxEntries int64) (*Cache, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	c, err := ristretto.NewCache(&ristretto.Config[uint64, cacheEntry]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("perft cache: %w", err)
	}
	return &Cache{c: c}, nil
}

func cacheKey(hash uint64, depth int) uint64 {
	return hash ^ uint64(depth)*0x9E3779B97F4A7C15
}

// Get returns the stored count for a position hash and depth.
func (c *Cache) Get(hash uint64, depth int) (uint64, bool) {
	e, ok := c.c.Get(cacheKey(hash, depth))
	if !ok || e.hash != hash || e.depth != depth {
		return 0, false
	}
	return e.nodes, true
}

// Put stores a subtree count. Each entry costs one unit.
func (c *Cache) Put(hash uint64, depth int, nodes uint64) {
	c.c.Set(cacheKey(hash, depth), cacheEntry{hash: hash, depth: depth, nodes: nodes}, 1)
}

// Wait blocks until buffered writes are applied.
func (c *Cache) Wait() {
	c.c.Wait()
}

// Hits returns the number of successful lookups so far.
func (c *Cache) Hits() uint64 {
	return c.c.Metrics.Hits()
}

// Misses returns the number of failed lookups so far.
func (c *Cache) Misses() uint64 {
	return c.c.Metrics.Misses()
}

// Close stops the cache's background goroutines.
func (c *Cache) Close() {
	c.c.Close()
}
