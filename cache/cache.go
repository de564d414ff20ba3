package cache

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/geocache"
	"github.com/gogpu/geocache/identity"
	"github.com/gogpu/geocache/tessellate"
)

// EvictFunc is called for every entry evicted to make room for another.
// It runs with the cache lock held and must not call back into the cache.
type EvictFunc func(key identity.Key, size int64)

// Option configures a Cache.
type Option func(*Cache)

// WithEvictFunc registers a callback for LRU evictions. Clear and Resize do
// not invoke it.
func WithEvictFunc(fn EvictFunc) Option {
	return func(c *Cache) {
		c.onEvict = fn
	}
}

// entry owns one cached buffer and its recency marker.
type entry struct {
	key     identity.Key
	buf     *tessellate.Buffer
	size    int64
	recency uint64

	prev, next *entry
}

// Cache is the cross-frame geometry cache.
type Cache struct {
	mu      sync.Mutex
	entries map[identity.Key]*entry
	lru     lruList
	used    int64  // Sum of entry sizes
	budget  int64  // Byte budget; <= 0 disables storage
	seq     uint64 // Monotonic recency counter
	onEvict EvictFunc

	// Statistics (atomic for zero-allocation reads)
	hits       atomic.Uint64
	misses     atomic.Uint64
	insertions atomic.Uint64
	refusals   atomic.Uint64
	evictions  atomic.Uint64
}

// New creates a cache holding at most budget bytes of buffers.
// A budget of zero or less creates a cache that refuses every insert.
func New(budget int64, opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[identity.Key]*entry),
		budget:  budget,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the buffer cached under key and marks it most recently used.
// It performs no allocation and no copy.
func (c *Cache) Get(key identity.Key) (*tessellate.Buffer, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}
	c.touch(e)
	buf := e.buf
	c.mu.Unlock()

	c.hits.Add(1)
	return buf, true
}

// Touch marks the entry for key most recently used without counting a hit.
// It reports whether the key is cached.
func (c *Cache) Touch(key identity.Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok {
		c.touch(e)
	}
	return ok
}

// Contains reports whether key is cached without changing its recency.
func (c *Cache) Contains(key identity.Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// Insert stores buf under key, evicting least recently used entries until
// it fits. size is the number of bytes charged against the budget.
//
// Insert refuses (returns false and leaves the cache unchanged) when size
// exceeds the budget or the budget is not positive. The caller still owns
// buf and may use it for the current frame.
//
// Inserting an existing key replaces the previous entry wholesale.
func (c *Cache) Insert(key identity.Key, buf *tessellate.Buffer, size int64) bool {
	if buf == nil || size < 0 {
		c.refusals.Add(1)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.budget <= 0 {
		c.refusals.Add(1)
		return false
	}
	if size > c.budget {
		c.refusals.Add(1)
		geocache.ComponentLogger("cache").Warn("entry larger than cache budget, not cached",
			slog.String("key", key.String()),
			slog.Int64("size", size),
			slog.Int64("budget", c.budget))
		return false
	}

	if existing, ok := c.entries[key]; ok {
		c.remove(existing)
	}

	for c.used+size > c.budget {
		oldest := c.lru.Oldest()
		if oldest == nil {
			break
		}
		c.remove(oldest)
		c.evictions.Add(1)
		if c.onEvict != nil {
			c.onEvict(oldest.key, oldest.size)
		}
	}

	c.seq++
	e := &entry{
		key:     key,
		buf:     buf,
		size:    size,
		recency: c.seq,
	}
	c.lru.PushFront(e)
	c.entries[key] = e
	c.used += size
	c.insertions.Add(1)

	checkInvariants(c)
	return true
}

// Clear drops every entry. Use it when the scene is reloaded: shape
// references are only meaningful for the scene that produced them.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clear()
}

// Resize clears the cache and sets a new budget.
func (c *Cache) Resize(budget int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clear()
	c.budget = budget
	geocache.ComponentLogger("cache").Info("geometry cache resized", slog.Int64("budget", budget))
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Used returns the number of bytes currently charged against the budget.
func (c *Cache) Used() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used
}

// Budget returns the configured byte budget.
func (c *Cache) Budget() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.budget
}

// Keys returns the cached keys from most to least recently used.
func (c *Cache) Keys() []identity.Key {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]identity.Key, 0, c.lru.Len())
	for e := c.lru.head; e != nil; e = e.next {
		keys = append(keys, e.key)
	}
	return keys
}

// Stats contains cache statistics.
type Stats struct {
	// Entries is the number of cached buffers.
	Entries int
	// Used is the number of bytes held.
	Used int64
	// Budget is the byte budget.
	Budget int64
	// Hits is the number of successful Get calls.
	Hits uint64
	// Misses is the number of failed Get calls.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0.0 to 1.0.
	HitRate float64
	// Insertions is the number of stored entries.
	Insertions uint64
	// Refusals is the number of inserts rejected by the budget.
	Refusals uint64
	// Evictions is the number of entries evicted by LRU.
	Evictions uint64
}

// Stats returns current cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	entries := len(c.entries)
	used := c.used
	budget := c.budget
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Entries:    entries,
		Used:       used,
		Budget:     budget,
		Hits:       hits,
		Misses:     misses,
		HitRate:    hitRate,
		Insertions: c.insertions.Load(),
		Refusals:   c.refusals.Load(),
		Evictions:  c.evictions.Load(),
	}
}

// ResetStats resets all statistics counters to zero.
func (c *Cache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.insertions.Store(0)
	c.refusals.Store(0)
	c.evictions.Store(0)
}

// touch stamps e with a fresh recency marker and moves it to the front.
// Caller must hold c.mu.
func (c *Cache) touch(e *entry) {
	c.seq++
	e.recency = c.seq
	c.lru.MoveToFront(e)
}

// remove drops e from the map and the list and releases its bytes.
// Caller must hold c.mu.
func (c *Cache) remove(e *entry) {
	c.lru.Remove(e)
	delete(c.entries, e.key)
	c.used -= e.size
	e.buf = nil
}

// clear drops every entry. Caller must hold c.mu.
func (c *Cache) clear() {
	c.entries = make(map[identity.Key]*entry)
	c.lru.Clear()
	c.used = 0
}
