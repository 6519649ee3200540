// Package retrieve resolves a free-text query against the published
// indices and assembles a context bounded by a total token ceiling.
package retrieve

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheCapacity is the content cache size in entries.
const DefaultCacheCapacity = 64

// ContentCache is the shared chunk content cache. It is safe for
// concurrent readers; loads are deduplicated per key so at most one
// store read is in flight for a given chunk id. A rebuild drops the
// whole cache, since chunk ids may be reused with different content.
type ContentCache struct {
	entries *lru.Cache[string, string]
	group   singleflight.Group
}

// NewContentCache creates a cache bounded to capacity entries,
// evicting least-recently-used content under pressure.
func NewContentCache(capacity int) *ContentCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	entries, _ := lru.New[string, string](capacity)
	return &ContentCache{entries: entries}
}

// Get returns the cached content for a chunk id, calling load on miss.
// Concurrent misses for the same id share a single load.
func (c *ContentCache) Get(chunkID string, load func() (string, error)) (string, error) {
	if content, ok := c.entries.Get(chunkID); ok {
		return content, nil
	}

	v, err, _ := c.group.Do(chunkID, func() (any, error) {
		// Re-check: another caller may have populated the entry
		// between our miss and acquiring the flight.
		if content, ok := c.entries.Get(chunkID); ok {
			return content, nil
		}
		content, err := load()
		if err != nil {
			return "", err
		}
		c.entries.Add(chunkID, content)
		return content, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Purge drops every cached entry. Called on index rebuild.
func (c *ContentCache) Purge() {
	c.entries.Purge()
}

// Len returns the number of cached entries.
func (c *ContentCache) Len() int {
	return c.entries.Len()
}
