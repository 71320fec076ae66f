package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// DefaultTTL is how long a FileCache keeps fetched source bytes fresh.
// Brand artwork changes rarely; a day keeps repeated batch runs off the
// network without letting a replaced logo linger for long.
const DefaultTTL = 24 * time.Hour

// FileCache stores values as raw files under a directory, one file per
// key. Freshness is judged by file modification time against the store's
// TTL, so entries carry no metadata and cached images land on disk
// byte-for-byte as fetched.
type FileCache struct {
	dir string
	ttl time.Duration
}

// FileCacheOption configures a FileCache.
type FileCacheOption func(*FileCache)

// WithTTL overrides the store's freshness window. A zero or negative
// TTL disables expiry.
func WithTTL(d time.Duration) FileCacheOption {
	return func(c *FileCache) { c.ttl = d }
}

// NewFileCache creates a file-based cache in the given directory.
// The directory will be created if it doesn't exist.
func NewFileCache(dir string, opts ...FileCacheOption) (Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	c := &FileCache{dir: dir, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get retrieves a value from the cache. Stale entries are removed and
// reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	if c.ttl > 0 {
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		if time.Since(info.ModTime()) > c.ttl {
			_ = os.Remove(path)
			return nil, false, nil
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value in the cache. Overwriting an existing key resets
// its freshness window.
func (c *FileCache) Set(ctx context.Context, key string, data []byte) error {
	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Delete removes a value from the cache.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for file cache.
func (c *FileCache) Close() error {
	return nil
}

// path converts a cache key to a file path. The first two hash characters
// become a subdirectory to avoid too many files in one dir.
func (c *FileCache) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(c.dir, hash[:2], hash[2:]+".src")
}

// Ensure FileCache implements Cache.
var _ Cache = (*FileCache)(nil)
