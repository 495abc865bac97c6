// Package flags caches remote feature flags.
package flags

import (
	"context"
	"sync"
	"time"

	"github.com/vytor/likescenter/internal/logger"
	"golang.org/x/sync/singleflight"
)

const blurKey = "blur"

// Fetcher loads the blur feature flag.
type Fetcher interface {
	FetchFeatureFlag(ctx context.Context) (bool, error)
}

// Cache holds the last known value of the blur flag. Until the first
// successful fetch the flag reads as disabled.
type Cache struct {
	source Fetcher
	ttl    time.Duration
	clock  func() time.Time

	// group collapses concurrent misses into one remote call.
	group singleflight.Group

	mu        sync.RWMutex
	enabled   bool
	fetchedAt time.Time
	loaded    bool
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL makes Enabled re-fetch once the cached value is older than ttl.
// Zero keeps the value until Refresh is called.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(c *Cache) { c.clock = clock }
}

// New creates a Cache over source.
func New(source Fetcher, opts ...Option) *Cache {
	c := &Cache{source: source, clock: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled returns the cached flag, fetching it if it was never loaded or has
// gone stale. On a failed fetch it returns the last known value together with
// the error.
func (c *Cache) Enabled(ctx context.Context) (bool, error) {
	c.mu.RLock()
	enabled, loaded, fetchedAt := c.enabled, c.loaded, c.fetchedAt
	c.mu.RUnlock()

	if loaded && (c.ttl <= 0 || c.clock().Sub(fetchedAt) < c.ttl) {
		return enabled, nil
	}
	return c.Refresh(ctx)
}

// Refresh fetches the flag now.
func (c *Cache) Refresh(ctx context.Context) (bool, error) {
	// The fetch is shared by every concurrent caller, so it must not die
	// with whichever caller started it.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(blurKey, func() (any, error) {
		return c.source.FetchFeatureFlag(fetchCtx)
	})

	log := logger.FromContext(ctx).WithPrefix("flags")
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		err := ctx.Err()
		c.mu.RLock()
		last := c.enabled
		c.mu.RUnlock()
		log.Debug("gave up waiting for %s flag: %v", blurKey, err)
		return last, err
	}
	v, err, shared := res.Val, res.Err, res.Shared

	if err != nil {
		c.mu.RLock()
		last := c.enabled
		c.mu.RUnlock()
		log.Warn("failed to fetch %s flag, keeping %t: %v", blurKey, last, err)
		return last, err
	}

	enabled := v.(bool)
	c.mu.Lock()
	c.enabled, c.loaded, c.fetchedAt = enabled, true, c.clock()
	c.mu.Unlock()

	log.Debug("%s flag = %t (shared=%t)", blurKey, enabled, shared)
	return enabled, nil
}
