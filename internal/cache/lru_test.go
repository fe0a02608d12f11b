package cache

import (
	"testing"
	"time"
)

func TestLRUGetSet(t *testing.T) {
	c := NewLRU[string](2, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set("a", "1")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("expected hit with 1, got %q ok=%v", v, ok)
	}

	c.Set("a", "2")
	if v, _ := c.Get("a"); v != "2" {
		t.Fatalf("expected overwrite to 2, got %q", v)
	}
	if c.Size() != 1 {
		t.Fatalf("expected size 1, got %d", c.Size())
	}
}

func TestLRUEviction(t *testing.T) {
	c := NewLRU[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now most recently used
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a retained")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("expected c retained")
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRU[int](10, time.Nanosecond)
	c.Set("a", 1)
	time.Sleep(time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected expired entry to miss")
	}
	c.Set("b", 2)
	time.Sleep(time.Millisecond)
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("expected 1 cleaned, got %d", n)
	}
}

func TestLRUPurge(t *testing.T) {
	c := NewLRU[int](10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Purge()
	if c.Size() != 0 {
		t.Fatalf("expected empty after purge, got %d", c.Size())
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss after purge")
	}
}
