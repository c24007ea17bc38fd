package cache

import "hash/fnv"

// shardCount is the number of shards. Must be a power of 2.
const shardCount = 16

// Hasher computes a hash for a key. Sharded uses it for shard selection.
type Hasher[K any] func(K) uint64

// StringHasher computes the FNV-1a hash of a string key.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // fnv.Write never returns an error
	return h.Sum64()
}

// Uint64Hasher returns the key itself.
func Uint64Hasher(u uint64) uint64 {
	return u
}

// Sharded spreads entries over 16 LRU shards to reduce lock contention.
// Total capacity is approximately capacity * 16.
type Sharded[K comparable, V any] struct {
	shards [shardCount]*LRU[K, V]
	hasher Hasher[K]
}

// NewSharded creates a sharded cache with capacity entries per shard.
func NewSharded[K comparable, V any](capacity int, hasher Hasher[K]) *Sharded[K, V] {
	c := &Sharded[K, V]{hasher: hasher}
	for i := range c.shards {
		c.shards[i] = New[K, V](capacity)
	}
	return c
}

func (c *Sharded[K, V]) shard(key K) *LRU[K, V] {
	return c.shards[c.hasher(key)&(shardCount-1)]
}

// Get returns the value for key.
func (c *Sharded[K, V]) Get(key K) (V, bool) { return c.shard(key).Get(key) }

// Set stores value under key.
func (c *Sharded[K, V]) Set(key K, value V) { c.shard(key).Set(key, value) }

// Delete removes key.
func (c *Sharded[K, V]) Delete(key K) bool { return c.shard(key).Delete(key) }

// Clear removes all entries from every shard.
func (c *Sharded[K, V]) Clear() {
	for _, s := range c.shards {
		s.Clear()
	}
}

// Len returns the total number of entries.
func (c *Sharded[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.Len()
	}
	return total
}

// Stats aggregates statistics over all shards. Capacity is the total.
func (c *Sharded[K, V]) Stats() Stats {
	var n, capacity int
	var hits, misses, evictions uint64
	for _, s := range c.shards {
		st := s.Stats()
		n += st.Len
		capacity += st.Capacity
		hits += st.Hits
		misses += st.Misses
		evictions += st.Evictions
	}
	return newStats(n, capacity, hits, misses, evictions)
}
