package iics

import (
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache is a pluggable byte cache used for read caching of GET responses.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached value for key and whether it was present.
	Get(key string) ([]byte, bool)

	// Set stores value under key. Entry lifetime is backend-configured.
	Set(key string, value []byte)

	// Delete removes a single key.
	Delete(key string)

	// Flush removes every entry. Called on login so that a new session
	// never observes responses cached under the previous one.
	Flush()

	// Close releases backend resources.
	Close() error
}

// memoryCache is an in-process LRU cache with per-cache TTL.
type memoryCache struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryCache creates an in-memory LRU cache holding up to maxSize
// entries, each expiring after ttl.
func NewMemoryCache(config *MemoryCacheConfig) Cache {
	return &memoryCache{
		lru: expirable.NewLRU[string, []byte](config.MaxSize, nil, config.TTL),
	}
}

func (c *memoryCache) Get(key string) ([]byte, bool) {
	return c.lru.Get(key)
}

func (c *memoryCache) Set(key string, value []byte) {
	c.lru.Add(key, value)
}

func (c *memoryCache) Delete(key string) {
	c.lru.Remove(key)
}

func (c *memoryCache) Flush() {
	c.lru.Purge()
}

func (c *memoryCache) Close() error {
	c.lru.Purge()

	return nil
}

// noopCache satisfies Cache while caching nothing.
type noopCache struct{}

// NewNoOpCache returns a cache that stores nothing.
func NewNoOpCache() Cache {
	return noopCache{}
}

func (noopCache) Get(string) ([]byte, bool) { return nil, false }
func (noopCache) Set(string, []byte)        {}
func (noopCache) Delete(string)             {}
func (noopCache) Flush()                    {}
func (noopCache) Close() error              { return nil }
