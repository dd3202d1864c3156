// This file defines how a stale entry gets refreshed in the background.
// The goal of refresh is: "Keep data fresh without slowing down reads"

package refresh

import (
	"context"
	"sync"
	"sync/atomic"

	logging "github.com/ipfs/go-log/v2"
	"github.com/krisalay/active-cache/executor"
)

var log = logging.Logger("activecache/refresh")

/*
Scheduler hands background reloads to an Executor.

The reader that triggers a refresh has already got its (stale) value, so nothing
that happens in the background is ever reported back to it. Failures are logged
and dropped here.

The Executor is resolved on the first Schedule call, so a cache that never sees a
stale entry never creates the shared worker pool.
*/
type Scheduler struct {
	getExecutor func() executor.Executor

	once sync.Once
	exec executor.Executor
}

// NewScheduler creates a Scheduler that obtains its Executor from getExecutor.
func NewScheduler(getExecutor func() executor.Executor) *Scheduler {
	return &Scheduler{getExecutor: getExecutor}
}

// Executor returns the executor that background refreshes run on.
func (s *Scheduler) Executor() executor.Executor {
	s.once.Do(func() {
		s.exec = s.getExecutor()
	})
	return s.exec
}

/*
Schedule submits a refresh of key.

run is called on the executor with a context detached from any reader.
abort is called instead of run when the executor rejects the task outright,
so the caller can release whatever it reserved for this refresh.

Executors must either run an accepted task eventually or complete its Future
before Submit returns.
*/
func (s *Scheduler) Schedule(key any, run func(ctx context.Context) error, abort func(err error)) executor.Future {
	var started atomic.Bool

	fut := s.Executor().Submit(func() {
		started.Store(true)
		if err := run(context.Background()); err != nil {
			log.Warnw("Background refresh failed, keeping cached value", "key", key, "err", err)
			return
		}
		log.Debugw("Background refresh complete", "key", key)
	})

	select {
	case <-fut.Done():
		if !started.Load() {
			err := fut.Wait(context.Background())
			if err == nil {
				err = executor.ErrClosed
			}
			log.Errorw("Cannot schedule background refresh", "key", key, "err", err)
			abort(err)
		}
	default:
	}
	return fut
}
