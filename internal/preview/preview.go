// Package preview memoizes resized source images for display. The cache is
// never a source of truth: callers purge it whenever the source root changes
// or the document is reloaded.
package preview

import (
	"image"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultEntries is the capacity used when New is given a non-positive size.
const DefaultEntries = 256

// Key identifies one cached preview.
type Key struct {
	SourceID string
	Size     int
}

// Loader produces the preview for a key on a cache miss.
type Loader func() (*image.NRGBA, error)

// Cache is a bounded LRU of previews.
type Cache struct {
	mu      sync.Mutex
	entries *lru.Cache[Key, *image.NRGBA]
	hits    uint64
	misses  uint64
}

// New returns a cache holding at most entries previews.
func New(entries int) *Cache {
	if entries <= 0 {
		entries = DefaultEntries
	}
	c, err := lru.New[Key, *image.NRGBA](entries)
	if err != nil {
		// Only reachable with a non-positive size, excluded above.
		panic(err)
	}
	return &Cache{entries: c}
}

// Get returns the cached preview or calls load and stores its result. Load
// errors are returned and not cached.
func (c *Cache) Get(key Key, load Loader) (*image.NRGBA, error) {
	if img, ok := c.entries.Get(key); ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return img, nil
	}
	img, err := load()
	if err != nil {
		return nil, err
	}
	c.entries.Add(key, img)
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
	return img, nil
}

// Peek reports whether key is cached without touching recency.
func (c *Cache) Peek(key Key) bool {
	_, ok := c.entries.Peek(key)
	return ok
}

// Forget drops every size cached for sourceID.
func (c *Cache) Forget(sourceID string) int {
	removed := 0
	for _, k := range c.entries.Keys() {
		if k.SourceID == sourceID && c.entries.Remove(k) {
			removed++
		}
	}
	return removed
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.entries.Purge()
}

// Len is the number of cached previews.
func (c *Cache) Len() int { return c.entries.Len() }

// Stats returns hit and miss counts since creation.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
