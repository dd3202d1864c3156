package cache

import (
	"context"
	"errors"
	"time"

	logging "github.com/ipfs/go-log/v2"
	api "github.com/krisalay/active-cache/api"
	"github.com/krisalay/active-cache/engine"
	"github.com/krisalay/active-cache/executor"
	"github.com/krisalay/active-cache/expiration"
	"github.com/krisalay/active-cache/refresh"
	"github.com/krisalay/active-cache/shard"
	"github.com/krisalay/active-cache/types"
)

var log = logging.Logger("activecache")

var _ api.Cache[string, any] = (*ActiveCache[string, any])(nil)

/*
ActiveCache is the main cache implementation.
It serves values from memory and keeps them close to fresh by itself.

Every Get looks at the age of the cached entry:
- missing:  load now, the caller waits
- fresh:    return the cached value
- stale:    return the cached value, and refresh it in the background
- expired:  reload now, the caller waits

For any key there is at most one load in flight, whether it was started by a
waiting caller or by a background refresh. Callers that need the result of a
load that is already running wait for it instead of starting another.

A failed load never touches the cache. The entry for a key is always the last
value that was loaded successfully.
*/
type ActiveCache[K comparable, V any] struct {
	// shards are the actual storage units. Each shard is an independent mini-cache.
	shards []*shard.Shard[K, V]

	// engine contains the "rules" of the cache: thresholds, loader, refresh, metrics, clock.
	engine *engine.CacheEngine[K, V]

	// selector decides which shard a key should go to.
	selector shard.Selector[K, V]

	// fanout bounds the concurrency of GetAll.
	fanout int
}

// New creates an ActiveCache that loads values with loader and reloads them
// once they are older than timeout.
func New[K comparable, V any](loader types.Loader[K, V], timeout time.Duration, options ...Option) (*ActiveCache[K, V], error) {
	opts, err := getOpts(options)
	if err != nil {
		return nil, err
	}
	if loader == nil {
		return nil, errors.New("nil loader")
	}

	exp, err := expiration.NewRefreshAhead(timeout, opts.refreshRatio)
	if err != nil {
		return nil, err
	}

	getExecutor := func() executor.Executor { return executor.Shared() }
	if opts.executor != nil {
		getExecutor = func() executor.Executor { return opts.executor }
	}

	eng := engine.NewCacheEngine(
		exp,
		refresh.NewScheduler(getExecutor),
		loader,
		opts.metrics,
		opts.clock,
	)

	s := make([]*shard.Shard[K, V], opts.shards)
	for i := range s {
		s[i] = shard.NewShard[K, V]()
	}

	log.Debugw("Created active cache", "timeout", timeout, "refreshAfter", exp.RefreshAfter(), "shards", opts.shards)

	return &ActiveCache[K, V]{
		shards:   s,
		engine:   eng,
		selector: shard.NewHashSelector[K, V](),
		fanout:   opts.fanout,
	}, nil
}

/*
Get returns the value for key.

It only blocks when there is no usable cached value, that is when the key is
missing or its entry has expired. In that case a loader failure is returned as
a *types.LoadError. A stale value is always returned immediately, and failures
of the background refresh it triggers are never returned to anyone reading a
stale value.
*/
func (c *ActiveCache[K, V]) Get(ctx context.Context, key K) (V, error) {
	sh := c.selector.Select(key, c.shards)

	ent, _ := sh.Store.Get(key)
	switch c.engine.State(ent) {
	case expiration.Fresh:
		c.engine.Metrics.Hit()
		return ent.Value, nil
	case expiration.Stale:
		c.engine.Metrics.Hit()
		c.refresh(sh, key, ent)
		return ent.Value, nil
	case expiration.Expired:
		c.engine.Metrics.Expire()
	default:
		c.engine.Metrics.Miss()
	}

	return c.load(ctx, sh, key)
}

// load gets a value the caller can use, either by loading it or by waiting for
// the load already in flight for key.
func (c *ActiveCache[K, V]) load(ctx context.Context, sh *shard.Shard[K, V], key K) (V, error) {
	for {
		call, leader := sh.Acquire(key)
		if !leader {
			v, err := call.Wait(ctx)
			if err != nil && ctx.Err() == nil && call.Abandoned() {
				// Given up by its leader, not failed by the loader.
				continue
			}
			return v, err
		}

		// A load may have finished between reading the store and acquiring the flight.
		if cur, ok := sh.Store.Get(key); ok {
			switch c.engine.State(cur) {
			case expiration.Fresh:
				sh.Complete(key, call, cur, nil)
				return cur.Value, nil
			case expiration.Stale:
				sh.Complete(key, call, cur, nil)
				c.refresh(sh, key, cur)
				return cur.Value, nil
			}
		}

		ent, err := c.engine.Load(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				sh.Abandon(key, call, err)
			} else {
				sh.Complete(key, call, nil, err)
			}
			var zero V
			return zero, err
		}
		sh.Complete(key, call, ent, nil)
		return ent.Value, nil
	}
}

// refresh starts a background reload of key, unless a load is already in flight.
// seen is the stale entry the caller is about to return.
func (c *ActiveCache[K, V]) refresh(sh *shard.Shard[K, V], key K, seen *types.CacheEntry[V]) {
	call, leader := sh.Acquire(key)
	if !leader {
		return
	}

	// Replaced since the caller read it, so already refreshed.
	if cur, ok := sh.Store.Get(key); ok && cur != seen {
		sh.Complete(key, call, cur, nil)
		return
	}

	c.engine.Metrics.Refresh()
	c.engine.Refresh.Schedule(key,
		func(ctx context.Context) error {
			ent, err := c.engine.Load(ctx, key)
			sh.Complete(key, call, ent, err)
			return err
		},
		func(err error) {
			sh.Abandon(key, call, err)
		},
	)
}

// Peek returns the cached value for key without loading it, however old it is.
func (c *ActiveCache[K, V]) Peek(key K) (V, bool) {
	sh := c.selector.Select(key, c.shards)
	ent, ok := sh.Store.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	return ent.Value, true
}

// State reports the state key would be in for a Get issued now.
func (c *ActiveCache[K, V]) State(key K) expiration.State {
	sh := c.selector.Select(key, c.shards)
	ent, _ := sh.Store.Get(key)
	return c.engine.State(ent)
}

// Len returns the number of cached entries.
func (c *ActiveCache[K, V]) Len() int {
	var n int64
	for _, sh := range c.shards {
		n += sh.Store.Size()
	}
	return int(n)
}
