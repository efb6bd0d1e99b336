package engine

import (
	"context"
	"testing"
	"time"
)

func TestCacheKey(t *testing.T) {
	k1 := CacheKey("search", "lofi")
	k2 := CacheKey("search", "lofi")
	k3 := CacheKey("search", "jazz")

	if k1 != k2 {
		t.Error("same parts must give the same key")
	}
	if k1 == k3 {
		t.Error("different parts must give different keys")
	}
	if len(k1) != len("yt:")+24 {
		t.Errorf("key length = %d, want %d", len(k1), len("yt:")+24)
	}
}

func TestCacheNilPassThrough(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v")) // must not panic
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("nil cache must always miss")
	}
	if hits, misses := c.Stats(); hits != 0 || misses != 0 {
		t.Error("nil cache stats must be zero")
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c := NewCache("", time.Minute, 100, 0)
	ctx := context.Background()

	key := CacheKey("search", "test")
	c.Set(ctx, key, []byte(`{"a":1}`))

	data, ok := c.Get(ctx, key)
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if string(data) != `{"a":1}` {
		t.Errorf("data = %s", data)
	}

	hits, misses := c.Stats()
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}

	if _, ok := c.Get(ctx, CacheKey("search", "other")); ok {
		t.Error("expected miss for unknown key")
	}
	if _, misses = c.Stats(); misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache("", 10*time.Millisecond, 100, 0)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"))
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestCacheLoadJSON(t *testing.T) {
	c := NewCache("", time.Minute, 100, 0)
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}

	CacheStoreJSON(ctx, c, "good", payload{Name: "x"})
	got, ok := CacheLoadJSON[payload](ctx, c, "good")
	if !ok || got.Name != "x" {
		t.Errorf("got %+v ok=%v", got, ok)
	}

	c.Set(ctx, "corrupt", []byte("{not json"))
	if _, ok := CacheLoadJSON[payload](ctx, c, "corrupt"); ok {
		t.Error("corrupt entry must behave as a miss")
	}
}
