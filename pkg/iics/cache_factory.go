package iics

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/fivetwenty-io/iics-client/internal/constants"
)

// CacheType represents the type of cache backend.
type CacheType string

const (
	// CacheTypeMemory represents the in-memory LRU cache.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS represents a NATS JetStream KV bucket, for sharing the
	// read cache across processes.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeNone disables caching.
	CacheTypeNone CacheType = "none"
)

// Static errors for err113 compliance.
var (
	ErrNATSConfigRequired   = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedCacheType = errors.New("unsupported cache type")
)

// CacheConfig configures the cache backend.
type CacheConfig struct {
	// Type is the cache backend type.
	Type CacheType `mapstructure:"type" yaml:"type"`

	// Memory configures the memory backend; defaults apply when nil.
	Memory *MemoryCacheConfig `mapstructure:"memory" yaml:"memory,omitempty"`

	// NATS configures the NATS KV backend; required for CacheTypeNATS.
	NATS *NATSKVConfig `mapstructure:"nats" yaml:"nats,omitempty"`
}

// MemoryCacheConfig configures the in-memory cache.
type MemoryCacheConfig struct {
	// MaxSize is the maximum number of cached entries.
	MaxSize int `mapstructure:"max_size" yaml:"max_size"`

	// TTL is the lifetime of a cached entry.
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// NATSKVConfig configures the NATS KV cache backend.
type NATSKVConfig struct {
	// URL is the NATS server URL.
	URL string `mapstructure:"url" yaml:"url"`

	// Bucket is the KV bucket name; created if missing.
	Bucket string `mapstructure:"bucket" yaml:"bucket"`

	// TTL is the lifetime of a cached entry, applied at bucket creation.
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// DefaultCacheConfig returns a memory cache configuration with defaults.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type: CacheTypeMemory,
		Memory: &MemoryCacheConfig{
			MaxSize: constants.DefaultCacheSize,
			TTL:     constants.DefaultCacheTTL,
		},
	}
}

// NewCacheFromConfig creates a cache backend from configuration.
func NewCacheFromConfig(config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Type {
	case CacheTypeMemory:
		memory := config.Memory
		if memory == nil {
			memory = DefaultCacheConfig().Memory
		}

		if memory.MaxSize <= 0 {
			memory.MaxSize = constants.DefaultCacheSize
		}

		if memory.TTL <= 0 {
			memory.TTL = constants.DefaultCacheTTL
		}

		return NewMemoryCache(memory), nil

	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		return NewNATSKVCache(config.NATS)

	case CacheTypeNone:
		return NewNoOpCache(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}
}

// natsKVCache stores entries in a NATS JetStream KV bucket. Logical keys are
// hashed because KV key syntax is narrower than URL syntax.
type natsKVCache struct {
	conn *nats.Conn
	kv   nats.KeyValue
}

// NewNATSKVCache connects to NATS and binds (or creates) the KV bucket.
func NewNATSKVCache(config *NATSKVConfig) (Cache, error) {
	conn, err := nats.Connect(config.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("opening JetStream context: %w", err)
	}

	kv, err := js.KeyValue(config.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		ttl := config.TTL
		if ttl <= 0 {
			ttl = constants.DefaultCacheTTL
		}

		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket: config.Bucket,
			TTL:    ttl,
		})
	}

	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("binding KV bucket %q: %w", config.Bucket, err)
	}

	return &natsKVCache{conn: conn, kv: kv}, nil
}

func (c *natsKVCache) Get(key string) ([]byte, bool) {
	entry, err := c.kv.Get(hashKey(key))
	if err != nil {
		return nil, false
	}

	return entry.Value(), true
}

func (c *natsKVCache) Set(key string, value []byte) {
	_, _ = c.kv.Put(hashKey(key), value)
}

func (c *natsKVCache) Delete(key string) {
	_ = c.kv.Delete(hashKey(key))
}

func (c *natsKVCache) Flush() {
	keys, err := c.kv.Keys()
	if err != nil {
		return
	}

	for _, key := range keys {
		_ = c.kv.Delete(key)
	}
}

func (c *natsKVCache) Close() error {
	c.conn.Close()

	return nil
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))

	return hex.EncodeToString(sum[:])
}
