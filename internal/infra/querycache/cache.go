package querycache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// FetchFunc produces the value for a key. The context is canceled when a
// newer fetch or an optimistic write supersedes this one.
type FetchFunc func(ctx context.Context) (any, error)

// Entry is a snapshot of one cache entry.
type Entry struct {
	Key       Key
	Value     any
	Stale     bool
	UpdatedAt time.Time
}

type entry struct {
	key       Key
	value     any
	stale     bool
	updatedAt time.Time
}

type flight struct {
	cancel context.CancelFunc
}

// Cache is a keyed cache of query results. Entries stay fresh until they are
// invalidated or, when a stale time is configured, until they age out.
// Stored values are treated as immutable; writers replace, never mutate.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]*entry
	inflight  map[string]*flight
	staleTime time.Duration
	now       func() time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithStaleTime makes entries older than d count as stale on read.
// Zero (the default) means entries stay fresh until invalidated.
func WithStaleTime(d time.Duration) CacheOption {
	return func(c *Cache) {
		c.staleTime = d
	}
}

// New creates an empty cache.
func New(opts ...CacheOption) *Cache {
	c := &Cache{
		entries:  make(map[string]*entry),
		inflight: make(map[string]*flight),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key, regardless of staleness.
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.String()]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Set writes a value for key and marks the entry fresh.
func (c *Cache) Set(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key.String()] = &entry{
		key:       key,
		value:     value,
		updatedAt: c.now(),
	}
}

// Fetch returns the fresh cached value for key or runs fn to produce one.
// A fetch already in flight for the same key is canceled and superseded.
// When fn fails and a previous value exists, that value is returned together
// with the error (stale-while-error); the entry's staleness is left untouched
// so a later Fetch retries.
func (c *Cache) Fetch(ctx context.Context, key Key, fn FetchFunc) (any, error) {
	ks := key.String()

	c.mu.Lock()
	if e, ok := c.entries[ks]; ok && c.fresh(e) {
		value := e.value
		c.mu.Unlock()
		return value, nil
	}

	fctx, cancel := context.WithCancel(ctx)
	f := &flight{cancel: cancel}
	if prev, ok := c.inflight[ks]; ok {
		prev.cancel()
	}
	c.inflight[ks] = f
	c.mu.Unlock()

	value, err := fn(fctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[ks] == f {
		delete(c.inflight, ks)
	}
	cancel()

	if fctx.Err() != nil {
		// Superseded or caller gone. A late result must not clobber
		// whatever was written in the meantime.
		log.Debug().Str("key", ks).Msg("fetch canceled, result discarded")
		if e, ok := c.entries[ks]; ok {
			return e.value, fctx.Err()
		}
		return nil, fctx.Err()
	}

	if err != nil {
		if e, ok := c.entries[ks]; ok {
			return e.value, err
		}
		return nil, err
	}

	c.entries[ks] = &entry{key: key, value: value, updatedAt: c.now()}
	return value, nil
}

// Invalidate marks the entry for key stale so the next Fetch refetches.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key.String()]; ok {
		e.stale = true
	}
}

// InvalidateKind marks every entry of the given resource kind stale.
func (c *Cache) InvalidateKind(kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if e.key.Kind == kind {
			e.stale = true
		}
	}
}

// Remove drops the entry for key and cancels any fetch in flight for it.
func (c *Cache) Remove(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ks := key.String()
	delete(c.entries, ks)
	if f, ok := c.inflight[ks]; ok {
		f.cancel()
		delete(c.inflight, ks)
	}
}

// RemoveKind drops every entry of the given resource kind.
func (c *Cache) RemoveKind(kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for ks, e := range c.entries {
		if e.key.Kind == kind {
			delete(c.entries, ks)
			if f, ok := c.inflight[ks]; ok {
				f.cancel()
				delete(c.inflight, ks)
			}
		}
	}
}

// CancelInFlight cancels the fetch currently running for key, if any.
// A canceled fetch's late result is never applied to the cache.
func (c *Cache) CancelInFlight(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ks := key.String()
	if f, ok := c.inflight[ks]; ok {
		f.cancel()
		delete(c.inflight, ks)
	}
}

// EntriesOfKind snapshots every entry of the given resource kind.
func (c *Cache) EntriesOfKind(kind string) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Entry
	for _, e := range c.entries {
		if e.key.Kind == kind {
			out = append(out, Entry{
				Key:       e.key,
				Value:     e.value,
				Stale:     e.stale,
				UpdatedAt: e.updatedAt,
			})
		}
	}
	return out
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) fresh(e *entry) bool {
	if e.stale {
		return false
	}
	if c.staleTime > 0 && c.now().Sub(e.updatedAt) >= c.staleTime {
		return false
	}
	return true
}
