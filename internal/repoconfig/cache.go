package repoconfig

import "sync"

// DefaultCacheSize bounds the document cache when no size is configured.
const DefaultCacheSize = 100

// Cache is a bounded map that evicts the entry with the fewest accesses
// when full. Ties go to the entry inserted first. It is safe for
// concurrent use.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	seq      uint64
	entries  map[K]*cacheEntry[V]
}

type cacheEntry[V any] struct {
	value V
	hits  int
	seq   uint64
}

// NewCache returns a cache holding at most capacity entries.
func NewCache[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &Cache[K, V]{capacity: capacity, entries: make(map[K]*cacheEntry[V], capacity)}
}

// Get returns the cached value and counts the access.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	e.hits++
	return e.value, true
}

// Put stores value. Replacing an existing key keeps its access count.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.value = value
		return
	}
	if len(c.entries) >= c.capacity {
		c.evictLocked()
	}
	c.seq++
	c.entries[key] = &cacheEntry[V]{value: value, seq: c.seq}
}

func (c *Cache[K, V]) evictLocked() {
	var (
		victim K
		best   *cacheEntry[V]
	)
	for k, e := range c.entries {
		if best == nil || e.hits < best.hits || (e.hits == best.hits && e.seq < best.seq) {
			victim, best = k, e
		}
	}
	if best != nil {
		delete(c.entries, victim)
	}
}

// Delete removes key.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]*cacheEntry[V], c.capacity)
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Hits returns the access count of key, or -1 when absent.
func (c *Cache[K, V]) Hits(key K) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.hits
	}
	return -1
}
