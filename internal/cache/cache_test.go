package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testKey(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestCacheRoundTrip(t *testing.T) {
	c, err := New(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	key := testKey("google|en|fr|hello")

	if _, ok := c.Get(key); ok {
		t.Fatal("empty cache should miss")
	}
	c.Put(key, "bonjour")
	got, ok := c.Get(key)
	if !ok || got != "bonjour" {
		t.Fatalf("get returned %q, %v", got, ok)
	}

	c.Delete(key)
	if _, ok := c.Get(key); ok {
		t.Fatal("deleted entry should miss")
	}
}

func TestCacheExpiresEntries(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, time.Minute)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	key := testKey("stale")
	c.Put(key, "vieux")

	// Age the entry past the TTL by rewriting its timestamp.
	path := filepath.Join(dir, key+".json")
	data := `{"result":"vieux","cachedAt":"2001-01-01T00:00:00Z"}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("rewrite entry: %v", err)
	}

	if _, ok := c.Get(key); ok {
		t.Fatal("expired entry should miss")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expired entry should be removed from disk")
	}
}

func TestCacheRejectsUnsafeKeys(t *testing.T) {
	c, err := New(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	c.Put("../escape", "nope")
	if _, ok := c.Get("../escape"); ok {
		t.Fatal("unsafe key should never hit")
	}
}

func TestCacheHonorsEnvDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LINGO_CACHE_DIR", dir)
	c, err := New("", 0)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	if c.Dir() != dir {
		t.Fatalf("cache dir %q, want %q", c.Dir(), dir)
	}
	key := testKey("env")
	c.Put(key, "ici")
	if _, err := os.Stat(filepath.Join(dir, key+".json")); err != nil {
		t.Fatalf("entry not written under env dir: %v", err)
	}
}
