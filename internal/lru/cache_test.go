package lru

import "testing"

func TestCacheGetPutRoundTrip(t *testing.T) {
	c := New(2)
	if _, ok := c.Get(1); ok {
		t.Fatalf("expected miss on empty cache")
	}
	c.Put(1, []byte("a"))
	v, ok := c.Get(1)
	if !ok || string(v) != "a" {
		t.Fatalf("got %q,%v want a,true", v, ok)
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2)
	c.Put(1, []byte("a"))
	c.Put(2, []byte("b"))
	c.Put(3, []byte("c")) // evicts 1
	if _, ok := c.Get(1); ok {
		t.Fatalf("expected 1 to be evicted")
	}
	if v, ok := c.Get(2); !ok || string(v) != "b" {
		t.Fatalf("expected 2 to survive eviction")
	}
	if v, ok := c.Get(3); !ok || string(v) != "c" {
		t.Fatalf("expected 3 to be present")
	}
}

func TestCacheGetRefreshesRecency(t *testing.T) {
	c := New(2)
	c.Put(1, []byte("a"))
	c.Put(2, []byte("b"))
	c.Get(1)              // 1 is now MRU, 2 is LRU
	c.Put(3, []byte("c")) // evicts 2
	if _, ok := c.Get(2); ok {
		t.Fatalf("expected 2 to be evicted")
	}
	if _, ok := c.Get(1); !ok {
		t.Fatalf("expected 1 to survive")
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := New(4)
	c.Put(1, []byte("a"))
	c.Invalidate(1)
	if _, ok := c.Get(1); ok {
		t.Fatalf("expected invalidated entry to miss")
	}
}

func TestCacheZeroCapacityDisablesCaching(t *testing.T) {
	c := New(0)
	c.Put(1, []byte("a"))
	if _, ok := c.Get(1); ok {
		t.Fatalf("capacity 0 should never cache")
	}
	if c.Len() != 0 {
		t.Fatalf("expected length 0, got %d", c.Len())
	}
}

func TestCacheReset(t *testing.T) {
	c := New(4)
	c.Put(1, []byte("a"))
	c.Put(2, []byte("b"))
	c.Reset()
	if c.Len() != 0 {
		t.Fatalf("expected length 0 after reset, got %d", c.Len())
	}
	c.Put(3, []byte("c"))
	if v, ok := c.Get(3); !ok || string(v) != "c" {
		t.Fatalf("cache should be usable after reset")
	}
}
