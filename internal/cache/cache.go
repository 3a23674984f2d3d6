// Package cache implements the expiring key/value store used to
// memoize shaped query results.
package cache

import (
	"sync"
	"time"
)

// Cache is a mutex-guarded map with per-entry expiry.
//
// Expiry is lazy: Get and Has delete an expired entry on the access
// that discovers it. Only Len and Keys proactively purge all expired
// entries first; there is no background sweep.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

type entry struct {
	data   any
	expiry time.Time
}

// Option mutates a Cache at construction time.
type Option func(*Cache)

// WithClock replaces the time source. Tests use this to control expiry
// without sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache whose entries live for ttl after Set.
func New(ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, f := range opts {
		f(c)
	}
	return c
}

// Set stores data under key, resetting its expiry.
func (c *Cache) Set(key string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{data: data, expiry: c.now().Add(c.ttl)}
}

// Get returns the live entry for key, deleting it first if expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiry) {
		delete(c.entries, key)
		return nil, false
	}
	return e.data, true
}

// Has reports whether a live entry exists for key, deleting it first if
// expired.
func (c *Cache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Invalidate removes key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len purges expired entries and returns the live count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purge()
	return len(c.entries)
}

// Keys purges expired entries and returns the live keys in map order.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purge()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

func (c *Cache) purge() {
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiry) {
			delete(c.entries, k)
		}
	}
}
