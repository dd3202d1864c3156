package executor_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/krisalay/active-cache/executor"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsTasks(t *testing.T) {
	p := executor.NewPool(4)
	defer p.Close()

	var ran atomic.Int32
	futs := make([]executor.Future, 100)
	for i := range futs {
		futs[i] = p.Submit(func() { ran.Add(1) })
	}
	for _, f := range futs {
		require.NoError(t, f.Wait(context.Background()))
	}
	require.Equal(t, int32(100), ran.Load())
}

func TestPoolSubmitDoesNotBlock(t *testing.T) {
	p := executor.NewPool(1)
	defer p.Close()

	release := make(chan struct{})
	p.Submit(func() { <-release })

	// The only worker is busy, queued tasks must not hold up Submit.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			p.Submit(func() {})
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("submit blocked while worker was busy")
	}
	close(release)
}

func TestPoolPending(t *testing.T) {
	p := executor.NewPool(1)
	defer p.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	p.Submit(func() {
		close(started)
		<-release
	})
	<-started
	require.Zero(t, p.Pending())

	for i := 0; i < 10; i++ {
		p.Submit(func() {})
	}
	// One queued task may already be on its way to the busy worker.
	require.Eventually(t, func() bool { return p.Pending() >= 9 }, time.Second, time.Millisecond)

	close(release)
	require.Eventually(t, func() bool { return p.Pending() == 0 }, time.Second, time.Millisecond)
}

func TestPoolCloseDrainsQueue(t *testing.T) {
	p := executor.NewPool(2)

	var ran atomic.Int32
	for i := 0; i < 50; i++ {
		p.Submit(func() {
			time.Sleep(time.Millisecond)
			ran.Add(1)
		})
	}
	p.Close()
	require.Equal(t, int32(50), ran.Load())

	// Closing twice is harmless.
	p.Close()
}

func TestPoolSubmitAfterClose(t *testing.T) {
	p := executor.NewPool(1)
	p.Close()

	var ran bool
	f := p.Submit(func() { ran = true })

	select {
	case <-f.Done():
	default:
		t.Fatal("rejected task future not completed")
	}
	require.ErrorIs(t, f.Wait(context.Background()), executor.ErrClosed)
	require.False(t, ran)
}

func TestPoolRecoversPanic(t *testing.T) {
	p := executor.NewPool(1)
	defer p.Close()

	f := p.Submit(func() { panic("boom") })
	err := f.Wait(context.Background())
	require.ErrorContains(t, err, "boom")

	// The worker survived.
	var mu sync.Mutex
	ok := false
	f = p.Submit(func() {
		mu.Lock()
		ok = true
		mu.Unlock()
	})
	require.NoError(t, f.Wait(context.Background()))
	mu.Lock()
	require.True(t, ok)
	mu.Unlock()
}

func TestFutureWaitHonoursContext(t *testing.T) {
	p := executor.NewPool(1)
	defer p.Close()

	release := make(chan struct{})
	defer close(release)
	f := p.Submit(func() { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, f.Wait(ctx), context.DeadlineExceeded)
}

func TestSynchronous(t *testing.T) {
	var ran bool
	f := executor.Synchronous{}.Submit(func() { ran = true })
	require.True(t, ran)
	require.NoError(t, f.Wait(context.Background()))

	f = executor.Synchronous{}.Submit(func() { panic("boom") })
	require.ErrorContains(t, f.Wait(context.Background()), "boom")
}

func TestShared(t *testing.T) {
	require.Same(t, executor.Shared(), executor.Shared())
	require.NoError(t, executor.Shared().Submit(func() {}).Wait(context.Background()))
}
