package cache

import (
	"strconv"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	c := New[string, int](100)
	if c.Capacity() != 100 {
		t.Errorf("expected capacity 100, got %d", c.Capacity())
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
	if New[string, int](0).Capacity() != 1 {
		t.Error("non-positive capacity should clamp to 1")
	}
}

func TestGetSet(t *testing.T) {
	c := New[string, int](10)
	c.Set("key1", 42)

	val, ok := c.Get("key1")
	if !ok || val != 42 {
		t.Errorf("Get(key1) = %d, %v; want 42, true", val, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for missing key")
	}

	c.Set("key1", 7)
	if val, _ := c.Get("key1"); val != 7 {
		t.Errorf("updated value = %d, want 7", val)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry after update, got %d", c.Len())
	}
}

func TestLeastRecentlyUsedEviction(t *testing.T) {
	c := New[int, int](3)
	c.Set(1, 1)
	c.Set(2, 2)
	c.Set(3, 3)

	// Touch 1 so that 2 becomes the oldest.
	c.Get(1)
	c.Set(4, 4)

	if _, ok := c.Peek(2); ok {
		t.Error("expected key 2 to be evicted")
	}
	for _, k := range []int{1, 3, 4} {
		if _, ok := c.Peek(k); !ok {
			t.Errorf("expected key %d to survive", k)
		}
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("expected 1 eviction, got %d", got)
	}
}

func TestDeleteAndClear(t *testing.T) {
	c := New[string, int](10)
	c.Set("a", 1)
	c.Set("b", 2)

	if !c.Delete("a") {
		t.Error("Delete(a) should report true")
	}
	if c.Delete("a") {
		t.Error("second Delete(a) should report false")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d", c.Len())
	}

	// The list must stay consistent after Clear.
	c.Set("c", 3)
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Errorf("Get(c) after Clear = %d, %v", v, ok)
	}
}

func TestDeleteFunc(t *testing.T) {
	c := New[int, int](10)
	for i := range 10 {
		c.Set(i, i)
	}
	removed := c.DeleteFunc(func(_ int, v int) bool { return v%2 == 0 })
	if removed != 5 {
		t.Errorf("DeleteFunc removed %d, want 5", removed)
	}
	if c.Len() != 5 {
		t.Errorf("expected 5 entries, got %d", c.Len())
	}

	// Evictions must still work on the pruned list.
	for i := 10; i < 20; i++ {
		c.Set(i, i)
	}
	if c.Len() != 10 {
		t.Errorf("expected 10 entries, got %d", c.Len())
	}
}

func TestStats(t *testing.T) {
	c := New[string, int](10)
	c.Set("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("b")

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 {
		t.Errorf("hits=%d misses=%d, want 2 and 1", s.Hits, s.Misses)
	}
	if s.HitRate < 0.66 || s.HitRate > 0.67 {
		t.Errorf("hit rate = %v", s.HitRate)
	}

	c.ResetStats()
	if s := c.Stats(); s.Hits != 0 || s.Misses != 0 {
		t.Error("ResetStats did not zero counters")
	}
}

func TestGetOrCreate(t *testing.T) {
	c := New[string, int](10)
	calls := 0
	create := func() int {
		calls++
		return 5
	}
	if v := c.GetOrCreate("x", create); v != 5 {
		t.Errorf("GetOrCreate = %d, want 5", v)
	}
	c.GetOrCreate("x", create)
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
}

func TestConcurrent(t *testing.T) {
	c := New[string, int](50)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := range 200 {
				key := strconv.Itoa((g*31 + i) % 80)
				c.Set(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()
	if c.Len() > 50 {
		t.Errorf("cache grew beyond capacity: %d", c.Len())
	}
}

func TestSharded(t *testing.T) {
	c := NewSharded[string, int](4, StringHasher)
	for i := range 100 {
		c.Set(strconv.Itoa(i), i)
	}
	if c.Len() > 4*shardCount {
		t.Errorf("sharded cache exceeded capacity: %d", c.Len())
	}
	c.Set("hello", 1)
	if v, ok := c.Get("hello"); !ok || v != 1 {
		t.Errorf("Get(hello) = %d, %v", v, ok)
	}
	st := c.Stats()
	if st.Capacity != 4*shardCount {
		t.Errorf("total capacity = %d, want %d", st.Capacity, 4*shardCount)
	}
	if !c.Delete("hello") {
		t.Error("Delete(hello) should report true")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty after Clear, got %d", c.Len())
	}
}

func BenchmarkGet(b *testing.B) {
	c := New[string, int](1000)
	for i := range 100 {
		c.Set(strconv.Itoa(i), i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("50")
	}
}

func BenchmarkSet(b *testing.B) {
	c := New[string, int](64)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(strconv.Itoa(i%100), i)
	}
}
