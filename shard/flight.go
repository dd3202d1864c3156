package shard

import "context"

// Call is one in-flight load of a key. Other readers of the key wait on it
// instead of starting a load of their own.
type Call[V any] struct {
	done  chan struct{}
	value V
	err   error

	// abandoned is set when the load ended without a result of its own, because
	// its leader's context was done or it was never started.
	abandoned bool
}

func newCall[V any]() *Call[V] {
	return &Call[V]{done: make(chan struct{})}
}

func (c *Call[V]) finish(v V, err error, abandoned bool) {
	c.value = v
	c.err = err
	c.abandoned = abandoned
	close(c.done)
}

// Done is closed when the load has finished.
func (c *Call[V]) Done() <-chan struct{} {
	return c.done
}

// Abandoned reports whether the finished load was given up by its leader rather
// than failed by the loader. Waiters may start a load of their own in that case.
// Only meaningful after Done is closed.
func (c *Call[V]) Abandoned() bool {
	<-c.done
	return c.abandoned
}

// Wait blocks until the load finishes or ctx is done. The context error is
// returned in the latter case; the load itself keeps going.
func (c *Call[V]) Wait(ctx context.Context) (V, error) {
	select {
	case <-c.done:
		return c.value, c.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}
