package iics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) Cache {
	t.Helper()

	cache := NewMemoryCache(&MemoryCacheConfig{MaxSize: 16, TTL: ttl})
	t.Cleanup(func() {
		_ = cache.Close()
	})

	return cache
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	t.Parallel()

	cache := newTestCache(t, time.Minute)

	_, ok := cache.Get("GET https://host/api/v2/connection")
	assert.False(t, ok)

	cache.Set("GET https://host/api/v2/connection", []byte(`[]`))

	value, ok := cache.Get("GET https://host/api/v2/connection")
	require.True(t, ok)
	assert.Equal(t, []byte(`[]`), value)
}

func TestMemoryCacheDelete(t *testing.T) {
	t.Parallel()

	cache := newTestCache(t, time.Minute)

	cache.Set("key", []byte("value"))
	cache.Delete("key")

	_, ok := cache.Get("key")
	assert.False(t, ok)
}

func TestMemoryCacheFlush(t *testing.T) {
	t.Parallel()

	cache := newTestCache(t, time.Minute)

	cache.Set("a", []byte("1"))
	cache.Set("b", []byte("2"))
	cache.Flush()

	_, ok := cache.Get("a")
	assert.False(t, ok)
	_, ok = cache.Get("b")
	assert.False(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	t.Parallel()

	cache := newTestCache(t, 10*time.Millisecond)

	cache.Set("key", []byte("value"))
	time.Sleep(30 * time.Millisecond)

	_, ok := cache.Get("key")
	assert.False(t, ok)
}

func TestNoOpCache(t *testing.T) {
	t.Parallel()

	cache := NewNoOpCache()

	cache.Set("key", []byte("value"))

	_, ok := cache.Get("key")
	assert.False(t, ok)

	cache.Delete("key")
	cache.Flush()
	require.NoError(t, cache.Close())
}
