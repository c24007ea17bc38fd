// Package cache provides the generic LRU primitives behind cellgrid's
// line, shape and glyph caches.
//
// # LRU[K, V]
//
// A capacity-bounded least-recently-used cache. Get promotes the entry,
// Set evicts the oldest entry once capacity is reached, and DeleteFunc
// removes every entry matching a predicate (used for lazy expiry).
//
//	c := cache.New[string, int](100)
//	c.Set("key", 42)
//	value, ok := c.Get("key")
//
// # Sharded[K, V]
//
// Sixteen LRU shards selected by a key hasher, for caches shared across
// goroutines such as the glyph cache.
//
//	c := cache.NewSharded[string, int](256, cache.StringHasher)
//
// Both types are safe for concurrent use and must not be copied after
// creation.
package cache
