// Package searchcache is the bounded query-result cache of the knowledge store.
package searchcache

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Defaults used when config leaves the cache unset.
const (
	DefaultSize = 1024
	DefaultTTL  = 10 * time.Minute
)

// Key identifies one search by its full parameter tuple.
type Key struct {
	Query    string
	Category string
	Filters  map[string][]string
	TopK     int
}

// String renders the key canonically: filter keys and values are sorted so
// equal tuples always map to the same entry.
func (k Key) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\x1f%s\x1f%s\x1f", k.TopK, k.Category, k.Query)
	names := make([]string, 0, len(k.Filters))
	for name := range k.Filters {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		vals := slices.Clone(k.Filters[name])
		slices.Sort(vals)
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strings.Join(vals, ","))
		b.WriteByte(';')
	}
	return b.String()
}

// Cache is an LRU with per-entry expiry, safe for concurrent use.
type Cache[V any] struct {
	lru *expirable.LRU[string, V]
}

// New creates a cache holding at most size entries for ttl each.
func New[V any](size int, ttl time.Duration) *Cache[V] {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[V]{lru: expirable.NewLRU[string, V](size, nil, ttl)}
}

// Get returns a cached value.
func (c *Cache[V]) Get(k Key) (V, bool) {
	return c.lru.Get(k.String())
}

// Put stores a value, evicting the least recently used entry when full.
func (c *Cache[V]) Put(k Key, v V) {
	c.lru.Add(k.String(), v)
}

// Purge drops every entry.
func (c *Cache[V]) Purge() {
	c.lru.Purge()
}

// Len returns the number of live entries.
func (c *Cache[V]) Len() int {
	return c.lru.Len()
}
