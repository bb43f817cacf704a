package dedupe

import (
	"sync"
	"time"

	"github.com/DeafMist/gift-radar/internal/models"
)

// key identifies an idea inside a dedup scope. Equality is the full (keyword, reason) pair.
type key struct {
	scope string
	idea  models.GiftIdea
}

type entry struct {
	key key
	ts  time.Time
}

// Cache is the set of ideas already handed out. The zero scope "" is shared by every caller.
//
// A non-positive capacity or ttl disables that bound, so by default the set only grows for
// the lifetime of the process.
type Cache struct {
	mu       sync.Mutex
	items    map[key]time.Time
	order    []entry
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewCache creates a cache with the provided capacity and ttl.
func NewCache(capacity int, ttl time.Duration) *Cache {
	return &Cache{
		items:    make(map[key]time.Time),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// FilterUnseen returns the ideas not yet handed out in scope, in their original order, and
// records them as seen. Filtering and recording happen under one lock so two concurrent
// requests can never both receive the same idea. Repeats inside ideas are dropped too.
func (c *Cache) FilterUnseen(scope string, ideas []models.GiftIdea) []models.GiftIdea {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	fresh := make([]models.GiftIdea, 0, len(ideas))
	for _, idea := range ideas {
		k := key{scope: scope, idea: idea}
		if c.seen(k, now) {
			continue
		}
		c.items[k] = now
		c.order = append(c.order, entry{key: k, ts: now})
		fresh = append(fresh, idea)
	}
	c.compact(now)

	return fresh
}

// IsSeen reports whether idea has already been handed out in scope.
func (c *Cache) IsSeen(scope string, idea models.GiftIdea) bool {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.seen(key{scope: scope, idea: idea}, now)
}

// Len returns the number of remembered ideas across all scopes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache) seen(k key, now time.Time) bool {
	ts, ok := c.items[k]
	if !ok {
		return false
	}
	return c.ttl <= 0 || now.Sub(ts) <= c.ttl
}

func (c *Cache) compact(now time.Time) {
	if c.capacity <= 0 && c.ttl <= 0 {
		return
	}

	for len(c.order) > 0 && (c.overCapacity() || c.expired(c.order[0], now)) {
		oldest := c.order[0]
		c.order = c.order[1:]

		if ts, ok := c.items[oldest.key]; ok && ts.Equal(oldest.ts) {
			delete(c.items, oldest.key)
		}
	}
}

func (c *Cache) overCapacity() bool {
	return c.capacity > 0 && len(c.items) > c.capacity
}

func (c *Cache) expired(e entry, now time.Time) bool {
	return c.ttl > 0 && now.Sub(e.ts) > c.ttl
}
