// Package executor provides the facility the cache uses to run background work.
//
// The cache never starts goroutines for refreshes on its own. It hands each refresh
// to an Executor and gets a Future back, so the scheduling of background work can
// be swapped, e.g. for a synchronous or recording executor in tests.
package executor

import (
	"context"
	"errors"
)

// ErrClosed is the error of a Future whose task was rejected by a closed executor.
var ErrClosed = errors.New("executor closed")

// Executor accepts zero-argument tasks and runs them at some point.
type Executor interface {
	// Submit schedules task and returns a handle that completes once the task
	// has run, or was rejected.
	Submit(task func()) Future
}

// Future represents the eventual completion of a submitted task.
type Future interface {
	// Done is closed once the task has finished or was rejected.
	Done() <-chan struct{}
	// Wait blocks until Done is closed or ctx is done.
	Wait(ctx context.Context) error
}

type future struct {
	done chan struct{}
	err  error
}

func newFuture() *future {
	return &future{done: make(chan struct{})}
}

func (f *future) complete(err error) {
	f.err = err
	close(f.done)
}

func (f *future) Done() <-chan struct{} {
	return f.done
}

func (f *future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Synchronous runs every task inline, on the goroutine that submits it.
type Synchronous struct{}

// Submit runs task before returning an already completed Future.
func (Synchronous) Submit(task func()) Future {
	f := newFuture()
	f.complete(run(task))
	return f
}
