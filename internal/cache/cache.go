// Package cache is the console's remote data cache: a key-based store of
// completed upstream reads that coalesces concurrent fetches of the same
// key and drops entries when a write invalidates them.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// State is what Peek reports for a key.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "error"
)

// Snapshot is a point-in-time view of one key, used by consumers that
// must tell "loading" apart from "empty" and "error".
type Snapshot struct {
	State     State
	Value     any
	Err       error
	FetchedAt time.Time
}

// Fetcher loads the value for a key from the upstream.
type Fetcher func(ctx context.Context) (any, error)

type entry struct {
	gen       uint64
	value     any
	valid     bool
	err       error
	fetchedAt time.Time
	// fetching is owned by fetch; prefetching by Prefetch's goroutine.
	fetching    bool
	prefetching bool
}

func (e *entry) busy() bool { return e.fetching || e.prefetching }

type result struct {
	value any
	gen   uint64
}

// Cache is safe for concurrent use.
type Cache struct {
	staleAfter   time.Duration
	fetchTimeout time.Duration
	now          func() time.Time

	group singleflight.Group

	mu      sync.Mutex
	seq     uint64
	entries map[string]*entry
}

type Option func(*Cache)

// WithStaleAfter sets how long a value is served before the next read
// refetches it. Zero disables time-based staleness.
func WithStaleAfter(d time.Duration) Option {
	return func(c *Cache) {
		c.staleAfter = d
	}
}

// WithFetchTimeout bounds a shared fetch that has outlived its callers.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) {
		c.fetchTimeout = d
	}
}

// New returns an empty cache with a 30s fetch timeout and no staleness.
func New(opts ...Option) *Cache {
	c := &Cache{
		fetchTimeout: 30 * time.Second,
		now:          time.Now,
		entries:      make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key builds the cache key for one resource inside a scope (a session).
func Key(scope, resource string) string {
	return scope + "/" + resource
}

// Read returns the cached value for key, or fetches it. Callers racing on
// the same key share one fetch. A fetch that began before the key was
// invalidated is not handed to readers that arrived after the
// invalidation; they wait for it to settle and fetch again.
//
// If ctx ends first Read returns ctx.Err(); the fetch keeps running
// detached and still fills the cache if its generation is current.
func (c *Cache) Read(ctx context.Context, key string, fetch Fetcher) (any, error) {
	for {
		c.mu.Lock()
		e := c.entryLocked(key)
		if e.valid && !c.staleLocked(e) {
			v := e.value
			c.mu.Unlock()
			return v, nil
		}
		want := e.gen
		c.mu.Unlock()

		ch := c.group.DoChan(key, func() (any, error) {
			return c.fetch(ctx, key, fetch)
		})

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res := <-ch:
			r, _ := res.Val.(result)
			if r.gen < want {
				continue
			}
			if res.Err != nil {
				return nil, res.Err
			}
			return r.value, nil
		}
	}
}

func (c *Cache) fetch(ctx context.Context, key string, fetch Fetcher) (any, error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	gen := e.gen
	e.fetching = true
	c.mu.Unlock()

	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
	defer cancel()

	v, err := safeFetch(fctx, fetch)

	c.mu.Lock()
	defer c.mu.Unlock()
	e.fetching = false
	// A result from a superseded generation is discarded.
	if cur, ok := c.entries[key]; !ok || cur != e || e.gen != gen {
		return result{gen: gen}, err
	}
	if err != nil {
		e.err = err
		e.valid = false
		e.value = nil
		return result{gen: gen}, err
	}
	e.value = v
	e.valid = true
	e.err = nil
	e.fetchedAt = c.now()
	return result{value: v, gen: gen}, nil
}

func safeFetch(ctx context.Context, fetch Fetcher) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetch panicked: %v", r)
		}
	}()
	return fetch(ctx)
}

// Invalidate marks key stale so the next Read refetches it.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return
	}
	c.seq++
	e.gen = c.seq
	e.valid = false
	e.value = nil
	e.err = nil
}

// InvalidatePrefix drops every key under prefix, e.g. a whole session scope.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		c.seq++
		e.gen = c.seq
		if e.busy() {
			// keep the entry so the in-flight fetch sees the new generation
			e.valid = false
			e.value = nil
			e.err = nil
			continue
		}
		delete(c.entries, key)
	}
}

// Peek reports key's state without fetching.
func (c *Cache) Peek(key string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peekLocked(key)
}

func (c *Cache) peekLocked(key string) Snapshot {
	e, ok := c.entries[key]
	if !ok {
		return Snapshot{State: StateIdle}
	}
	switch {
	case e.valid:
		return Snapshot{State: StateReady, Value: e.value, FetchedAt: e.fetchedAt}
	case e.busy():
		return Snapshot{State: StateLoading}
	case e.err != nil:
		return Snapshot{State: StateFailed, Err: e.err}
	default:
		return Snapshot{State: StateIdle}
	}
}

// Prefetch starts a background fetch for key unless a fresh value or an
// outstanding fetch already exists, and returns the key's snapshot. A
// stale value is still returned as ready while it is being refreshed.
func (c *Cache) Prefetch(ctx context.Context, key string, fetch Fetcher) Snapshot {
	c.mu.Lock()
	e := c.entryLocked(key)
	start := !e.busy() && (!e.valid || c.staleLocked(e))
	if start {
		e.prefetching = true
	}
	snap := c.peekLocked(key)
	c.mu.Unlock()

	if start {
		go func() {
			_, _ = c.Read(context.WithoutCancel(ctx), key, fetch)
			c.mu.Lock()
			e.prefetching = false
			c.mu.Unlock()
		}()
	}
	return snap
}

func (c *Cache) entryLocked(key string) *entry {
	e, ok := c.entries[key]
	if !ok {
		c.seq++
		e = &entry{gen: c.seq}
		c.entries[key] = e
	}
	return e
}

func (c *Cache) staleLocked(e *entry) bool {
	if e == nil || !e.valid {
		return true
	}
	return c.staleAfter > 0 && c.now().Sub(e.fetchedAt) >= c.staleAfter
}

// Get is the typed form of Read.
func Get[T any](ctx context.Context, c *Cache, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.Read(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: key %q holds %T, not %T", key, v, zero)
	}
	return t, nil
}
