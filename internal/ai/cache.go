package ai

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Cache bounds the cost of repeated augmentation calls: identical probe
// images (by content hash) reuse the parsed assessment instead of making
// a new external call. Size-bounded with least-recently-used eviction;
// safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	max     int
	entries map[string]*list.Element
	order   *list.List // front = most recently used
	now     func() time.Time
}

type cacheEntry struct {
	key        string
	assessment *Assessment
	storedAt   time.Time
}

// NewCache creates a cache holding at most max assessments. A max of zero
// or less disables caching.
func NewCache(max int) *Cache {
	return &Cache{
		max:     max,
		entries: make(map[string]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

// CacheKey hashes probe image content into a cache key.
func CacheKey(imageData []byte) string {
	sum := sha256.Sum256(imageData)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached assessment for key, if any.
func (c *Cache) Get(key string) (*Assessment, bool) {
	if c == nil || c.max <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).assessment, true
}

// Put stores an assessment under key, evicting the least recently used
// entry when full. Concurrent identical-key writes are last-writer-wins.
func (c *Cache) Put(key string, a *Assessment) {
	if c == nil || c.max <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.assessment = a
		entry.storedAt = c.now()
		c.order.MoveToFront(el)
		return
	}

	for c.order.Len() >= c.max {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{
		key:        key,
		assessment: a,
		storedAt:   c.now(),
	})
}

// Len returns the number of cached assessments.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
