package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/tailcallhq/tailcall-go/internal/dynval"
	"github.com/tailcallhq/tailcall-go/internal/template"
)

// LRU is a bounded, in-process Cache implementation. Entries past their
// TTL are treated as misses on read (lazy expiry) and the least recently
// used entry is evicted once MaxEntries is exceeded.
type LRU struct {
	mu         sync.Mutex
	maxEntries int
	ll         *list.List
	items      map[template.IoID]*list.Element
}

type lruEntry struct {
	key       template.IoID
	value     dynval.Value
	expiresAt time.Time
}

// NewLRU constructs an LRU bounded to maxEntries. maxEntries <= 0 means
// unbounded (no eviction, TTL is the only expiry mechanism).
func NewLRU(maxEntries int) *LRU {
	return &LRU{
		maxEntries: maxEntries,
		ll:         list.New(),
		items:      make(map[template.IoID]*list.Element),
	}
}

func (c *LRU) Get(_ context.Context, key template.IoID) (dynval.Value, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return dynval.Value{}, false, nil
	}
	entry := el.Value.(*lruEntry)
	if time.Now().After(entry.expiresAt) {
		c.ll.Remove(el)
		delete(c.items, key)
		return dynval.Value{}, false, nil
	}
	c.ll.MoveToFront(el)
	return entry.value, true, nil
}

func (c *LRU) Set(_ context.Context, key template.IoID, value dynval.Value, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(ttl)
	if el, ok := c.items[key]; ok {
		entry := el.Value.(*lruEntry)
		entry.value = value
		entry.expiresAt = expiresAt
		c.ll.MoveToFront(el)
		return nil
	}

	el := c.ll.PushFront(&lruEntry{key: key, value: value, expiresAt: expiresAt})
	c.items[key] = el

	if c.maxEntries > 0 {
		for c.ll.Len() > c.maxEntries {
			oldest := c.ll.Back()
			if oldest == nil {
				break
			}
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*lruEntry).key)
		}
	}
	return nil
}

// Len reports the number of live entries, for tests.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
