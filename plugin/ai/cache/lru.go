// Package cache provides a small in-process LRU cache with per-entry TTL,
// used for expensive read-mostly values such as the rendered catalog text.
package cache

import (
	"container/list"
	"sync"
	"time"
)

type item struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// LRU is a fixed-capacity cache. Reads refresh recency; writes beyond
// capacity evict the least recently used entry. Expired entries are dropped
// lazily on access and eagerly via PurgeExpired.
type LRU struct {
	capacity   int
	defaultTTL time.Duration

	mu    sync.Mutex
	order *list.List
	index map[string]*list.Element
}

// New creates a cache holding at most capacity entries, each living for
// defaultTTL unless SetWithTTL overrides it.
func New(capacity int, defaultTTL time.Duration) *LRU {
	if capacity <= 0 {
		capacity = 128
	}
	return &LRU{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		order:      list.New(),
		index:      make(map[string]*list.Element),
	}
}

// Get returns the cached value and whether it was present and fresh.
func (c *LRU) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		return nil, false
	}
	it := el.Value.(*item)
	if time.Now().After(it.expiresAt) {
		c.removeLocked(el)
		return nil, false
	}
	c.order.MoveToFront(el)
	return it.value, true
}

// Set stores the value under the default TTL.
func (c *LRU) Set(key string, value []byte) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores the value with an explicit lifetime.
func (c *LRU) SetWithTTL(key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(ttl)
	if el, ok := c.index[key]; ok {
		it := el.Value.(*item)
		it.value = value
		it.expiresAt = expiresAt
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&item{key: key, value: value, expiresAt: expiresAt})
	c.index[key] = el

	if c.order.Len() > c.capacity {
		if back := c.order.Back(); back != nil {
			c.removeLocked(back)
		}
	}
}

// Delete removes the entry, if present.
func (c *LRU) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		c.removeLocked(el)
	}
}

// Len returns the number of entries, counting any not yet reaped.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// PurgeExpired drops all stale entries and reports how many were removed.
func (c *LRU) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if now.After(el.Value.(*item).expiresAt) {
			c.removeLocked(el)
			removed++
		}
		el = prev
	}
	return removed
}

func (c *LRU) removeLocked(el *list.Element) {
	c.order.Remove(el)
	delete(c.index, el.Value.(*item).key)
}
