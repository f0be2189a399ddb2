// Package caching is a TTL file cache for fetched page snapshots, keyed by
// URL hash. It keeps repeat scans of the same order page from refetching
// (and re-analyzing) within the TTL.
package caching

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry is one cached page snapshot.
type Entry struct {
	URL       string    `json:"url"`
	FinalURL  string    `json:"final_url"`
	HTML      string    `json:"html"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Cache provides a file-based snapshot cache with a TTL.
type Cache struct {
	path string
	ttl  time.Duration
}

// NewCache creates a new Cache instance. The cache directory is created if
// it doesn't exist. A zero TTL disables reads (every Get misses).
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{
		path: path,
		ttl:  ttl,
	}, nil
}

// key generates a SHA256 hash of the URL to use as a filename.
func (c *Cache) key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%x.json", hash)
}

// Get retrieves a snapshot from the cache. The second return is false on a
// miss, an expired entry, or an unreadable file.
func (c *Cache) Get(url string) (*Entry, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	filePath := filepath.Join(c.path, c.key(url))
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > c.ttl {
		return nil, false
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	return &entry, true
}

// Set stores a snapshot in the cache.
func (c *Cache) Set(entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	filePath := filepath.Join(c.path, c.key(entry.URL))
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}
