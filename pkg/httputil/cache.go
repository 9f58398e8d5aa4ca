package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrExpired is returned by [Cache.Get] when a cached entry exists but has
// exceeded its time-to-live. The stale data is left on disk; callers should
// fetch fresh data and refresh the entry with [Cache.Set].
//
// Use errors.Is to check for it:
//
//	ok, err := cache.Get("countries", &page)
//	if errors.Is(err, httputil.ErrExpired) {
//	    // refetch and Set
//	}
var ErrExpired = errors.New("cache entry expired")

// Cache provides file-based caching of arbitrary JSON-marshalable data.
//
// Each entry is stored as a JSON file whose name is the SHA-256 hash of the
// cache key, so any string is a safe key and namespaced keys cannot collide
// on filesystem-special characters.
//
// Cache operations are not goroutine-safe; callers sharing one instance
// across goroutines must synchronize. Separate instances (even in separate
// processes) can share a directory, since writes replace whole files.
//
// Entries expire based on file modification time. A TTL of 0 means entries
// never expire.
type Cache struct {
	dir    string
	ttl    time.Duration
	prefix string
}

// NewCache creates a Cache that stores entries in dir with the given TTL.
//
// If dir is empty, NewCache uses ~/.cache/marketmap/. The directory is
// created with mode 0755 if it does not exist; directory creation failure
// is the only error NewCache can return.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".cache", "marketmap")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl, prefix: ""}, nil
}

// Dir returns the absolute path to the cache directory.
func (c *Cache) Dir() string { return c.dir }

// TTL returns the time-to-live for cache entries. Zero means no expiration.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get retrieves a cached value by key and unmarshals it into v.
//
// Outcomes:
//   - (true, nil): hit; the fresh value was unmarshaled into v.
//   - (false, nil): miss; no entry exists. v is unchanged.
//   - (false, ErrExpired): entry exists but exceeded its TTL. v is unchanged.
//   - (false, other): I/O or unmarshal error.
//
// Get never modifies the cache or refreshes modification times.
func (c *Cache) Get(key string, v any) (bool, error) {
	path := c.keyPath(c.prefix + key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return false, ErrExpired
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, v)
}

// Set stores a value under key, overwriting any existing entry and
// resetting its TTL. The value is marshaled with encoding/json.
func (c *Cache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(c.keyPath(c.prefix+key), data, 0o644)
}

// Delete removes the entry for key. Deleting a missing key is not an error.
func (c *Cache) Delete(key string) error {
	err := os.Remove(c.keyPath(c.prefix + key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes every entry in the cache directory, across all namespaces.
// The directory itself is kept.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Namespace returns a Cache view that prefixes every key with prefix.
// The view shares the parent's directory and TTL; calls can be chained
// to build hierarchical key spaces:
//
//	cache.Namespace("scrape:").Namespace("country:")
func (c *Cache) Namespace(prefix string) *Cache {
	return &Cache{
		dir:    c.dir,
		ttl:    c.ttl,
		prefix: c.prefix + prefix,
	}
}

func (c *Cache) keyPath(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}
