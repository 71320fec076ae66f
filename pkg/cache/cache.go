// Package cache provides byte caching for fetched overlay sources.
//
// Overlay elements reference their artwork by URL; fetching the same logo
// for every composite run would dominate batch latency, so fetched bytes
// are cached keyed by a hash of the source URL. Decoded images are never
// cached: the compositor decodes sequentially to bound peak memory, and
// cached bytes decode deterministically.
//
// Expiry is a property of the store, not the caller: each implementation
// decides how long source bytes stay fresh.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get retrieves a value. The second return reports a hit; stale
	// entries count as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// SourceKey returns the cache key for an overlay source URL.
func SourceKey(url string) string {
	return "source:" + Hash([]byte(url))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NullCache is a no-op cache that never stores anything.
// Useful for testing or when caching should be disabled.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always returns a cache miss.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (c *NullCache) Set(ctx context.Context, key string, data []byte) error {
	return nil
}

// Delete does nothing.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (c *NullCache) Close() error {
	return nil
}

// Ensure NullCache implements Cache.
var _ Cache = (*NullCache)(nil)
