// Package memo provides a single-assignment asynchronous result cache.
//
// Every distinct key is computed at most once for the lifetime of the owning
// Cache. Concurrent requests for the same key share one in-flight call, and
// once a key settles (success or failure) every later request observes that
// same settled outcome. There is no eviction and no automatic retry of a
// settled failure; both are deliberate policy, not oversights.
package memo

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// result holds a settled outcome for one key.
type result[V any] struct {
	val V
	err error
}

// Cache is a memoizing map from string keys to single-assignment results.
// The zero value is not usable; construct with New.
type Cache[V any] struct {
	group singleflight.Group

	mu      sync.RWMutex
	settled map[string]result[V]
}

// New creates an empty Cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{settled: make(map[string]result[V])}
}

// Do returns the settled result for key, computing it with fn on first
// request. The computation receives a context detached from the caller's
// cancellation: once a load is initiated it runs to completion, and all
// waiters receive its outcome.
func (c *Cache[V]) Do(ctx context.Context, key string, fn func(context.Context) (V, error)) (V, error) {
	c.mu.RLock()
	r, ok := c.settled[key]
	c.mu.RUnlock()
	if ok {
		return r.val, r.err
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent caller may have settled the key between our read
		// and the flight starting.
		c.mu.RLock()
		r, ok := c.settled[key]
		c.mu.RUnlock()
		if ok {
			return r.val, r.err
		}

		val, err := fn(context.WithoutCancel(ctx))

		c.mu.Lock()
		c.settled[key] = result[V]{val: val, err: err}
		c.mu.Unlock()
		return val, err
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Peek reports the settled value for key without triggering a computation.
func (c *Cache[V]) Peek(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.settled[key]
	if !ok || r.err != nil {
		var zero V
		return zero, false
	}
	return r.val, true
}

// Len returns the number of settled keys.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.settled)
}
