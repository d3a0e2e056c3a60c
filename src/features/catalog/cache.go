package catalog

import (
	"sync"
	"time"

	"github.com/contre95/musevault/src/music"
)

// FeedMode selects which featured feed a request is served from.
type FeedMode string

const (
	FeedFeatured      FeedMode = "featured"
	FeedRecentPopular FeedMode = "recent-popular"
)

// ParseFeedMode maps a query value to a feed, defaulting to FeedFeatured.
func ParseFeedMode(s string) FeedMode {
	if FeedMode(s) == FeedRecentPopular {
		return FeedRecentPopular
	}
	return FeedFeatured
}

// TTLs holds the freshness window of each cache.
type TTLs struct {
	Featured time.Duration
	Search   time.Duration
	Detail   time.Duration
}

type entry[T any] struct {
	data      T
	timestamp time.Time
}

type featuredSlot struct {
	entry[[]music.Release]
	limit int
}

// Cache keeps featured feeds, search results and release details in memory.
// Everything going in or out is deep-copied.
type Cache struct {
	mu         sync.Mutex
	now        func() time.Time
	ttls       TTLs
	maxEntries int
	featured   map[FeedMode]featuredSlot
	search     map[string]entry[[]music.Release]
	details    map[string]entry[music.Release]
}

// NewCache creates a cache. A nil clock means time.Now; maxEntries <= 0 disables pruning.
func NewCache(ttls TTLs, maxEntries int, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		now:        now,
		ttls:       ttls,
		maxEntries: maxEntries,
		featured:   make(map[FeedMode]featuredSlot),
		search:     make(map[string]entry[[]music.Release]),
		details:    make(map[string]entry[music.Release]),
	}
}

// IsFresh reports whether an entry written at ts is still inside ttl.
func (c *Cache) IsFresh(ts time.Time, ttl time.Duration) bool {
	return c.now().Sub(ts) < ttl
}

// SetTTLs replaces the freshness windows. Existing entries are judged by the new values.
func (c *Cache) SetTTLs(ttls TTLs) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttls = ttls
}

// TTLs returns the current freshness windows.
func (c *Cache) TTLs() TTLs {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttls
}

// Featured returns a fresh feed that was fetched for at least limit entries.
func (c *Cache) Featured(mode FeedMode, limit int) ([]music.Release, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, ok := c.featured[mode]
	if !ok || slot.limit < limit || !c.IsFresh(slot.timestamp, c.ttls.Featured) {
		return nil, false
	}
	return music.CloneReleases(slot.data), true
}

// StaleFeatured returns the last stored feed regardless of age.
func (c *Cache) StaleFeatured(mode FeedMode) ([]music.Release, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, ok := c.featured[mode]
	if !ok {
		return nil, false
	}
	return music.CloneReleases(slot.data), true
}

// StoreFeatured replaces the feed slot. limit is the largest request the data can serve.
func (c *Cache) StoreFeatured(mode FeedMode, data []music.Release, limit int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.featured[mode] = featuredSlot{
		entry: entry[[]music.Release]{data: music.CloneReleases(data), timestamp: c.now()},
		limit: limit,
	}
}

// Search returns fresh results for a normalized query key.
func (c *Cache) Search(key string) ([]music.Release, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.search[key]
	if !ok || !c.IsFresh(e.timestamp, c.ttls.Search) {
		return nil, false
	}
	return music.CloneReleases(e.data), true
}

// StaleSearch returns stored results regardless of age.
func (c *Cache) StaleSearch(key string) ([]music.Release, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.search[key]
	if !ok {
		return nil, false
	}
	return music.CloneReleases(e.data), true
}

func (c *Cache) StoreSearch(key string, data []music.Release) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search[key] = entry[[]music.Release]{data: music.CloneReleases(data), timestamp: c.now()}
	pruneExpired(c, c.search, c.ttls.Search)
}

// Detail returns a fresh release for id.
func (c *Cache) Detail(id string) (*music.Release, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.details[id]
	if !ok || !c.IsFresh(e.timestamp, c.ttls.Detail) {
		return nil, false
	}
	r := e.data.Clone()
	return &r, true
}

// StaleDetail returns a stored release regardless of age.
func (c *Cache) StaleDetail(id string) (*music.Release, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.details[id]
	if !ok {
		return nil, false
	}
	r := e.data.Clone()
	return &r, true
}

func (c *Cache) StoreDetail(id string, release music.Release) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.details[id] = entry[music.Release]{data: release.Clone(), timestamp: c.now()}
	pruneExpired(c, c.details, c.ttls.Detail)
}

// Len returns the number of stored search and detail entries.
func (c *Cache) Len() (search, details int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.search), len(c.details)
}

// pruneExpired drops expired entries once m outgrows maxEntries. Caller holds c.mu.
func pruneExpired[T any](c *Cache, m map[string]entry[T], ttl time.Duration) {
	if c.maxEntries <= 0 || len(m) <= c.maxEntries {
		return
	}
	for k, e := range m {
		if !c.IsFresh(e.timestamp, ttl) {
			delete(m, k)
		}
	}
}
