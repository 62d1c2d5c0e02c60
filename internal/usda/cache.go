// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package usda

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cache stores API responses as JSON files named by the MD5 of their
// request key. Entries older than the TTL are treated as misses.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

type cacheEntry struct {
	CachedAt time.Time       `json:"cached_at"`
	Data     json.RawMessage `json:"data"`
}

// NewCache creates dir if needed and returns a cache over it.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{dir: dir, ttl: ttl, now: time.Now}, nil
}

func (c *Cache) path(key string) string {
	sum := md5.Sum([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}

// Get returns the cached payload for key. Missing, unreadable, and
// expired entries all report a miss.
func (c *Cache) Get(key string) ([]byte, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	var e cacheEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false
	}
	if c.expired(e) {
		return nil, false
	}
	return e.Data, true
}

// Set writes payload under key, replacing any previous entry.
func (c *Cache) Set(key string, payload []byte) error {
	data, err := json.Marshal(cacheEntry{CachedAt: c.now().UTC(), Data: payload})
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Purge deletes expired and unreadable entries and reports how many were removed.
func (c *Cache) Purge() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, fmt.Errorf("reading cache directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		p := filepath.Join(c.dir, entry.Name())

		stale := true
		if data, err := os.ReadFile(p); err == nil {
			var e cacheEntry
			if json.Unmarshal(data, &e) == nil {
				stale = c.expired(e)
			}
		}
		if !stale {
			continue
		}
		if err := os.Remove(p); err != nil {
			return removed, fmt.Errorf("removing %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}

func (c *Cache) expired(e cacheEntry) bool {
	return c.ttl > 0 && c.now().Sub(e.CachedAt) > c.ttl
}
