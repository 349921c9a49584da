package ui

import (
	"sync"
	"time"
)

// renderCacheTTL is how long a rendered page stays valid.
const renderCacheTTL = 2 * time.Minute

// renderKey identifies one rendering of a page.
type renderKey struct {
	Path    string
	Width   int
	Theme   Theme
	Version uint64 // catalog snapshot version
}

type renderEntry struct {
	page     renderedPage
	storedAt time.Time
}

// renderCache keeps rendered page bodies so navigation and theme toggles
// do not re-run glamour. Entries expire after ttl; Purge drops everything
// when the dataset changes.
type renderCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[renderKey]renderEntry
	now     func() time.Time
}

func newRenderCache(ttl time.Duration) *renderCache {
	if ttl <= 0 {
		ttl = renderCacheTTL
	}
	return &renderCache{
		ttl:     ttl,
		entries: make(map[renderKey]renderEntry),
		now:     time.Now,
	}
}

func (c *renderCache) Get(k renderKey) (renderedPage, bool) {
	c.mu.RLock()
	e, ok := c.entries[k]
	c.mu.RUnlock()
	if !ok {
		return renderedPage{}, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		c.mu.Lock()
		delete(c.entries, k)
		c.mu.Unlock()
		return renderedPage{}, false
	}
	return e.page, true
}

// Has is Get without returning the page.
func (c *renderCache) Has(k renderKey) bool {
	_, ok := c.Get(k)
	return ok
}

func (c *renderCache) Put(k renderKey, p renderedPage) {
	c.mu.Lock()
	c.entries[k] = renderEntry{page: p, storedAt: c.now()}
	c.mu.Unlock()
}

func (c *renderCache) Purge() {
	c.mu.Lock()
	c.entries = make(map[renderKey]renderEntry)
	c.mu.Unlock()
}

func (c *renderCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
