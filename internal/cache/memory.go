package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rohmanhakim/product-aggregator/internal/product"
	"github.com/rohmanhakim/product-aggregator/pkg/timeutil"
)

type memoryEntry struct {
	records  []product.Record
	storedAt time.Time
}

// MemoryCache is an in-process ResultCache with the same TTL semantics as
// the persistent backends. Entries live as long as the process.
type MemoryCache struct {
	mu    sync.RWMutex
	data  map[string]memoryEntry
	ttl   time.Duration
	clock timeutil.Clock
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		data:  make(map[string]memoryEntry),
		ttl:   ttl,
		clock: time.Now,
	}
}

func (c *MemoryCache) WithClock(clock timeutil.Clock) *MemoryCache {
	if clock != nil {
		c.clock = clock
	}
	return c
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]product.Record, bool) {
	c.mu.RLock()
	entry, exists := c.data[key]
	c.mu.RUnlock()

	if !exists || expired(entry.storedAt, c.clock(), c.ttl) {
		return nil, false
	}
	return append([]product.Record(nil), entry.records...), true
}

func (c *MemoryCache) Put(ctx context.Context, key string, records []product.Record) {
	if len(records) == 0 {
		return
	}
	stored := append([]product.Record(nil), records...)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = memoryEntry{records: stored, storedAt: c.clock()}
}

// Size returns the number of entries, expired ones included.
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]memoryEntry)
}
