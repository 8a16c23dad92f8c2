// Package cache keeps parsed articles per feed source for a limited time
package cache

import (
	"sync"
	"time"

	"github.com/umputun/newsagg/pkg/domain"
)

// DefaultMaxAge is the freshness window used when none is given
const DefaultMaxAge = 30 * time.Minute

// Entry is a snapshot of the articles fetched for one source
type Entry struct {
	Articles  []domain.Article
	Timestamp time.Time // when the articles were fetched, never updated on read
}

// Cache is an in-memory, per-source articles cache. Entries never expire on their own,
// stale ones are just not returned and get replaced by the next Put.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	maxAge  time.Duration
	now     func() time.Time
}

// Option customizes Cache
type Option func(c *Cache)

// WithClock sets the time source, used in tests
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New makes a cache with the given freshness window, DefaultMaxAge if zero
func New(maxAge time.Duration, opts ...Option) *Cache {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	c := &Cache{entries: make(map[string]Entry), maxAge: maxAge, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the cached articles if the entry is younger than the cache max age
func (c *Cache) Get(sourceID string) ([]domain.Article, bool) {
	return c.GetWithAge(sourceID, c.maxAge)
}

// GetWithAge returns a copy of the cached articles if the entry is younger than maxAge
func (c *Cache) GetWithAge(sourceID string, maxAge time.Duration) ([]domain.Article, bool) {
	c.mu.RLock()
	e, ok := c.entries[sourceID]
	c.mu.RUnlock()
	if !ok || c.now().Sub(e.Timestamp) >= maxAge {
		return nil, false
	}
	return clone(e.Articles), true
}

// Put stores a copy of articles stamped with the current time, replacing any previous entry
func (c *Cache) Put(sourceID string, articles []domain.Article) {
	e := Entry{Articles: clone(articles), Timestamp: c.now()}
	c.mu.Lock()
	c.entries[sourceID] = e
	c.mu.Unlock()
}

// Entry returns a copy of the raw entry regardless of its age
func (c *Cache) Entry(sourceID string) (Entry, bool) {
	c.mu.RLock()
	e, ok := c.entries[sourceID]
	c.mu.RUnlock()
	if !ok {
		return Entry{}, false
	}
	return Entry{Articles: clone(e.Articles), Timestamp: e.Timestamp}, true
}

// Len returns the number of entries, fresh or stale
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// clone makes a non-nil copy, stored slices are never shared with callers
func clone(articles []domain.Article) []domain.Article {
	res := make([]domain.Article, len(articles))
	copy(res, articles)
	return res
}
