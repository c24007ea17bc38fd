package cache

import (
	"sync"
	"sync/atomic"
)

// LRU is a thread-safe least-recently-used cache with a fixed capacity.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*lruNode[K, V]
	order    lruList[K, V]
	capacity int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates an LRU holding at most capacity entries.
// A capacity <= 0 is treated as 1.
func New[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRU[K, V]{
		entries:  make(map[K]*lruNode[K, V]),
		capacity: capacity,
	}
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.order.moveToFront(n)
	c.hits.Add(1)
	return n.value, true
}

// Peek returns the value for key without touching recency or statistics.
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		return n.value, true
	}
	var zero V
	return zero, false
}

// Set stores value under key, evicting the least recently used entry when
// the cache is full.
func (c *LRU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		n.value = value
		c.order.moveToFront(n)
		return
	}
	for c.order.len >= c.capacity {
		oldest := c.order.removeOldest()
		if oldest == nil {
			break
		}
		delete(c.entries, oldest.key)
		c.evictions.Add(1)
	}
	c.entries[key] = c.order.pushFront(key, value)
}

// GetOrCreate returns the cached value or stores the result of create.
// Concurrent callers may both run create; the last Set wins.
func (c *LRU[K, V]) GetOrCreate(key K, create func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := create()
	c.Set(key, v)
	return v
}

// Delete removes key. It reports whether the key was present.
func (c *LRU[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		return false
	}
	c.order.unlink(n)
	delete(c.entries, key)
	return true
}

// DeleteFunc removes every entry for which fn returns true and returns the
// number removed.
func (c *LRU[K, V]) DeleteFunc(fn func(K, V) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, n := range c.entries {
		if fn(key, n.value) {
			c.order.unlink(n)
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear removes all entries. Statistics are kept.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*lruNode[K, V])
	c.order.clear()
}

// Len returns the number of entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the maximum number of entries.
func (c *LRU[K, V]) Capacity() int {
	return c.capacity
}

// Stats returns a snapshot of the cache statistics.
func (c *LRU[K, V]) Stats() Stats {
	return newStats(c.Len(), c.capacity, c.hits.Load(), c.misses.Load(), c.evictions.Load())
}

// ResetStats zeroes the hit, miss and eviction counters.
func (c *LRU[K, V]) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the maximum number of entries.
	Capacity int
	Hits     uint64
	Misses   uint64
	// HitRate is Hits / (Hits + Misses), or 0 before any lookup.
	HitRate   float64
	Evictions uint64
}

func newStats(n, capacity int, hits, misses, evictions uint64) Stats {
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{
		Len:       n,
		Capacity:  capacity,
		Hits:      hits,
		Misses:    misses,
		HitRate:   rate,
		Evictions: evictions,
	}
}
