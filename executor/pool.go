package executor

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/gammazero/channelqueue"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("activecache/executor")

var shared = sync.OnceValue(func() *Pool {
	return NewPool(runtime.GOMAXPROCS(0))
})

// Shared returns the process-wide pool, creating it on first use. The shared pool
// is never closed.
func Shared() *Pool {
	return shared()
}

type job struct {
	task func()
	fut  *future
}

/*
Pool is a fixed number of worker goroutines reading tasks from an unbounded queue.

The queue is unbounded so that Submit never blocks the submitter. Callers that
trigger a background refresh must not wait, even when every worker is busy.
*/
type Pool struct {
	queue *channelqueue.ChannelQueue[job]

	// mu guards closed against concurrent Submit, so nothing is sent on a closed queue.
	mu     sync.RWMutex
	closed bool

	wg sync.WaitGroup
}

// NewPool starts a pool with the given number of workers. At least one worker is started.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		queue: channelqueue.New[job](-1),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Submit queues task for a worker. After Close, the task is dropped and the
// returned Future fails with ErrClosed.
func (p *Pool) Submit(task func()) Future {
	f := newFuture()

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		f.complete(ErrClosed)
		return f
	}
	p.queue.In() <- job{task: task, fut: f}
	return f
}

// Pending returns the number of tasks waiting for a worker.
func (p *Pool) Pending() int {
	return p.queue.Len()
}

// Close stops accepting tasks and waits for the queued ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.queue.Close()
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for j := range p.queue.Out() {
		j.fut.complete(run(j.task))
	}
}

// run calls task, turning a panic into an error so a bad task cannot take a worker down.
func run(task func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
			log.Errorw("Background task panicked", "err", r)
		}
	}()
	task()
	return nil
}
