package engine

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/krisalay/active-cache/expiration"
	"github.com/krisalay/active-cache/refresh"
	"github.com/krisalay/active-cache/types"
)

/*
CacheEngine is the "brain" of the cache system.
It is responsible for the "behavior" of the cache, NOT storage.

It decides:
- How old an entry is, and what that means (fresh, stale, expired)
- How data is loaded, and how load failures are reported
- Where background refreshes run
- How metrics are recorded

It does NOT:
- Store data
- Handle sharding
- Track which keys are being loaded
*/
type CacheEngine[K comparable, V any] struct {

	// Expiration maps the age of an entry to a state.
	Expiration expiration.Strategy

	// Refresh runs reloads of stale entries off the read path.
	Refresh *refresh.Scheduler

	// Loader is how the cache talks to the outside world when it needs data.
	Loader types.Loader[K, V]

	// Metrics is how we keep track of what the cache is doing.
	Metrics types.Metrics

	// Clock is the time source for load timestamps and age checks.
	Clock clock.Clock
}

/*
NewCacheEngine creates a CacheEngine.
Nil metrics and clock are replaced by NoopMetrics and the wall clock.
*/
func NewCacheEngine[K comparable, V any](
	exp expiration.Strategy,
	sched *refresh.Scheduler,
	loader types.Loader[K, V],
	metrics types.Metrics,
	clk clock.Clock,
) *CacheEngine[K, V] {

	if metrics == nil {
		metrics = types.NoopMetrics{}
	}
	if clk == nil {
		clk = clock.New()
	}

	return &CacheEngine[K, V]{
		Expiration: exp,
		Refresh:    sched,
		Loader:     loader,
		Metrics:    metrics,
		Clock:      clk,
	}
}

// State classifies ent at the current time. A nil entry is Missing.
func (e *CacheEngine[K, V]) State(ent *types.CacheEntry[V]) expiration.State {
	if ent == nil {
		return expiration.Missing
	}
	return e.Expiration.State(ent.LoadedAt, e.Clock.Now())
}

/*
Load calls the loader and stamps the result with the completion time.

Any failure, including a panic inside the loader, comes back as a *types.LoadError
and no entry is produced.
*/
func (e *CacheEngine[K, V]) Load(ctx context.Context, key K) (ent *types.CacheEntry[V], err error) {
	defer func() {
		if r := recover(); r != nil {
			ent = nil
			err = &types.LoadError{Key: key, Err: fmt.Errorf("loader panicked: %v", r)}
		}
		if err != nil {
			e.Metrics.LoadError()
		}
	}()

	v, err := e.Loader.Load(ctx, key)
	if err != nil {
		return nil, &types.LoadError{Key: key, Err: err}
	}
	return types.NewCacheEntry(v, e.Clock.Now()), nil
}
