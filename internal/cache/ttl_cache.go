// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package cache

import (
	"sync"
	"time"

	"github.com/tomtom215/gamescore/internal/metrics"
)

// EvictReason records why an entry left the cache.
type EvictReason int

const (
	// EvictCapacity means the byte budget was reached and the entry was the oldest.
	EvictCapacity EvictReason = iota
	// EvictExpired means the entry outlived its TTL.
	EvictExpired
	// EvictReplaced means a newer Set for the same key superseded the entry.
	EvictReplaced
	// EvictDeleted means Delete or Clear removed the entry.
	EvictDeleted

	numEvictReasons
)

func (r EvictReason) String() string {
	switch r {
	case EvictCapacity:
		return "capacity"
	case EvictExpired:
		return "expired"
	case EvictReplaced:
		return "replaced"
	case EvictDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// DefaultTTL is used when neither the constructor nor Set supplies a TTL.
const DefaultTTL = 24 * time.Hour

type ttlEntry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
	cost      int
	prev      *ttlEntry[V]
	next      *ttlEntry[V]
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Entries   int
	Bytes     int
	Evictions map[string]int64
}

// TTLCache maps keys to values that expire individually and are evicted in
// insertion order once a byte budget is reached.
//
// Eviction is FIFO, not LRU: reads never reorder entries. A replaced key is
// treated as a fresh insertion and moves to the back of the queue.
//
// Expiry is lazy. Get and Has check the entry's own deadline, and Sweep
// removes everything past its deadline. Because each entry carries its own
// expiresAt, a stale deadline can never remove a newer value for the same key.
type TTLCache[V any] struct {
	mu sync.Mutex

	name       string
	clock      Clock
	defaultTTL time.Duration
	onEvict    func(key string, value V, reason EvictReason)

	items map[string]*ttlEntry[V]

	// head.next is the oldest entry, tail.prev the newest.
	head *ttlEntry[V]
	tail *ttlEntry[V]

	// costs is the sum of entryCost over live entries.
	costs int

	hits      int64
	misses    int64
	evictions [numEvictReasons]int64
}

// Option configures a TTLCache.
type Option[V any] func(*TTLCache[V])

// WithClock replaces the wall clock.
func WithClock[V any](clock Clock) Option[V] {
	return func(c *TTLCache[V]) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithDefaultTTL sets the TTL used when Set is called with ttl <= 0.
func WithDefaultTTL[V any](ttl time.Duration) Option[V] {
	return func(c *TTLCache[V]) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithEvictionCallback registers fn to run for every entry that leaves the
// cache. fn runs with the cache lock held and must not call back into it.
func WithEvictionCallback[V any](fn func(key string, value V, reason EvictReason)) Option[V] {
	return func(c *TTLCache[V]) {
		c.onEvict = fn
	}
}

// NewTTLCache creates an empty cache. name labels its metrics.
func NewTTLCache[V any](name string, opts ...Option[V]) *TTLCache[V] {
	c := &TTLCache[V]{
		name:       name,
		clock:      SystemClock,
		defaultTTL: DefaultTTL,
		items:      make(map[string]*ttlEntry[V]),
		head:       &ttlEntry[V]{},
		tail:       &ttlEntry[V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the metrics label of the cache.
func (c *TTLCache[V]) Name() string {
	return c.name
}

// Get returns the value for key if it is present and unexpired.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if ok && c.expired(entry, c.clock.Now()) {
		c.removeEntry(entry, EvictExpired)
		ok = false
	}
	if !ok {
		c.misses++
		metrics.RecordCacheMiss(c.name)
		var zero V
		return zero, false
	}

	c.hits++
	metrics.RecordCacheHit(c.name)
	return entry.value, true
}

// Peek is Get without touching the hit/miss counters.
func (c *TTLCache[V]) Peek(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok || c.expired(entry, c.clock.Now()) {
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Has reports whether key is present and unexpired. It does not touch the
// hit/miss counters.
func (c *TTLCache[V]) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok {
		return false
	}
	if c.expired(entry, c.clock.Now()) {
		c.removeEntry(entry, EvictExpired)
		return false
	}
	return true
}

// ExpiresAt returns the deadline of the live entry for key.
func (c *TTLCache[V]) ExpiresAt(key string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok || c.expired(entry, c.clock.Now()) {
		return time.Time{}, false
	}
	return entry.expiresAt, true
}

// Set inserts or replaces key. ttl <= 0 selects the default TTL.
//
// When maxBytes > 0 and the cache already holds maxBytes or more, expired
// entries are purged and, if that is not enough, the single oldest live
// entry is evicted before the new entry goes in. A single large value may
// therefore push the cache past its budget until the next Set.
//
// Set returns the new entry's deadline.
func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration, maxBytes int) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	if old, ok := c.items[key]; ok {
		c.removeEntry(old, EvictReplaced)
	}

	if maxBytes > 0 && c.size() >= maxBytes {
		c.purgeExpired(now)
		if c.size() >= maxBytes {
			c.evictOldest()
		}
	}

	entry := &ttlEntry[V]{
		key:       key,
		value:     value,
		expiresAt: now.Add(ttl),
		cost:      entryCost(key, value),
	}
	c.pushBack(entry)
	c.items[key] = entry
	c.costs += entry.cost

	c.publishState()
	return entry.expiresAt
}

// Delete removes key. It reports whether a live entry was removed.
func (c *TTLCache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok {
		return false
	}
	live := !c.expired(entry, c.clock.Now())
	if live {
		c.removeEntry(entry, EvictDeleted)
	} else {
		c.removeEntry(entry, EvictExpired)
	}
	c.publishState()
	return live
}

// ExpireIfMatch removes key only if its live entry still carries the
// deadline expiresAt. A timer armed for an entry that was since replaced
// is therefore a no-op.
func (c *TTLCache[V]) ExpireIfMatch(key string, expiresAt time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok || !entry.expiresAt.Equal(expiresAt) {
		return false
	}
	c.removeEntry(entry, EvictExpired)
	c.publishState()
	return true
}

// Sweep removes every expired entry and returns how many were removed.
func (c *TTLCache[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.purgeExpired(c.clock.Now())
	c.publishState()
	return removed
}

// Clear removes every entry.
func (c *TTLCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for entry := c.head.next; entry != c.tail; {
		next := entry.next
		c.removeEntry(entry, EvictDeleted)
		entry = next
	}
	c.publishState()
}

// Len returns the number of stored entries, including expired entries that
// have not been swept yet.
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Size returns the JSON-encoded size of the stored map in bytes.
func (c *TTLCache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size()
}

// Keys returns the stored keys from oldest to newest.
func (c *TTLCache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.items))
	for entry := c.head.next; entry != c.tail; entry = entry.next {
		keys = append(keys, entry.key)
	}
	return keys
}

// Snapshot copies the stored map, expired entries included.
func (c *TTLCache[V]) Snapshot() map[string]V {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]V, len(c.items))
	for k, entry := range c.items {
		out[k] = entry.value
	}
	return out
}

// Stats returns the cache counters.
func (c *TTLCache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	evictions := make(map[string]int64, numEvictReasons)
	for r := EvictReason(0); r < numEvictReasons; r++ {
		evictions[r.String()] = c.evictions[r]
	}
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Entries:   len(c.items),
		Bytes:     c.size(),
		Evictions: evictions,
	}
}

// Internal methods (must be called with lock held)

func (c *TTLCache[V]) expired(entry *ttlEntry[V], now time.Time) bool {
	return !now.Before(entry.expiresAt)
}

func (c *TTLCache[V]) size() int {
	return objectSize(len(c.items), c.costs)
}

func (c *TTLCache[V]) pushBack(entry *ttlEntry[V]) {
	entry.next = c.tail
	entry.prev = c.tail.prev
	c.tail.prev.next = entry
	c.tail.prev = entry
}

func (c *TTLCache[V]) removeEntry(entry *ttlEntry[V], reason EvictReason) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	entry.prev, entry.next = nil, nil

	delete(c.items, entry.key)
	c.costs -= entry.cost
	c.evictions[reason]++
	metrics.RecordCacheEviction(c.name, reason.String())

	if c.onEvict != nil {
		c.onEvict(entry.key, entry.value, reason)
	}
}

func (c *TTLCache[V]) purgeExpired(now time.Time) int {
	removed := 0
	for entry := c.head.next; entry != c.tail; {
		next := entry.next
		if c.expired(entry, now) {
			c.removeEntry(entry, EvictExpired)
			removed++
		}
		entry = next
	}
	return removed
}

func (c *TTLCache[V]) evictOldest() {
	oldest := c.head.next
	if oldest == c.tail {
		return
	}
	c.removeEntry(oldest, EvictCapacity)
}

func (c *TTLCache[V]) publishState() {
	metrics.SetCacheState(c.name, len(c.items), c.size())
}
