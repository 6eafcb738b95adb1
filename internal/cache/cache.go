// Package cache persists translation results between runs. Entries live as
// one small JSON file each under the user cache dir, keyed by the run
// inputs, so repeating a translation is free until the entry expires.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"
)

const (
	cacheEnvVar = "LINGO_CACHE_DIR"
	cacheSubdir = "lingo/results"

	// DefaultTTL bounds how long a cached translation stays authoritative.
	DefaultTTL = 30 * 24 * time.Hour
)

var keyRe = regexp.MustCompile(`^[0-9a-f]{6,64}$`)

type entry struct {
	Result   string    `json:"result"`
	CachedAt time.Time `json:"cachedAt"`
}

// Cache is a disk-backed result store. Jobs read and write it off the
// event loop, so every method takes the lock.
type Cache struct {
	mu  sync.Mutex
	dir string
	ttl time.Duration
}

// New opens the cache under dir. An empty dir resolves LINGO_CACHE_DIR,
// then the user cache dir; a non-positive ttl selects the default.
func New(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		dir = os.Getenv(cacheEnvVar)
	}
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = filepath.Join(os.TempDir(), "lingo-cache")
		}
		dir = filepath.Join(base, cacheSubdir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// Get returns the cached result for key if present and fresh. Expired
// entries are removed on the way out.
func (c *Cache) Get(key string) (string, bool) {
	path, ok := c.pathFor(key)
	if !ok {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		os.Remove(path)
		return "", false
	}
	if time.Since(e.CachedAt) > c.ttl {
		os.Remove(path)
		return "", false
	}
	return e.Result, true
}

// Put stores one result. Write failures are swallowed: the cache is an
// accelerator, never a correctness dependency.
func (c *Cache) Put(key, result string) {
	path, ok := c.pathFor(key)
	if !ok {
		return
	}
	data, err := json.Marshal(entry{Result: result, CachedAt: time.Now().UTC()})
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = os.WriteFile(path, data, 0o644)
}

// Delete drops one entry, used by the "retranslate without cache" command.
func (c *Cache) Delete(key string) {
	path, ok := c.pathFor(key)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = os.Remove(path)
}

// Dir reports where entries live, for diagnostics.
func (c *Cache) Dir() string { return c.dir }

// pathFor maps a key to its entry file. Keys come from sha1 hex digests;
// anything else is rejected rather than risked as a path.
func (c *Cache) pathFor(key string) (string, bool) {
	if !keyRe.MatchString(key) {
		return "", false
	}
	return filepath.Join(c.dir, key+".json"), true
}
