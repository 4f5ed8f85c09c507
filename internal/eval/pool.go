package eval

import (
	"errors"
	"runtime"
	"sync"
)

// ErrPoolClosed is returned by Submit after the pool has been closed.
var ErrPoolClosed = errors.New("worker pool closed")

// defaultWorkers bounds concurrent evaluations against the debuggee.
var defaultWorkers = runtime.GOMAXPROCS(0) * 2

// Pool is a bounded worker pool. Submit never blocks the caller: tasks queue
// until one of the workers picks them up.
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	wg     sync.WaitGroup
}

// NewPool creates a pool with the given number of workers. workers <= 0
// selects a default based on GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = defaultWorkers
	}

	p := &Pool{}
	p.cond = sync.NewCond(&p.mu)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Submit enqueues a task for execution. It returns immediately.
func (p *Pool) Submit(task func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}

	p.queue = append(p.queue, task)
	p.cond.Signal()
	return nil
}

// Close stops accepting tasks, runs what is already queued, and waits for
// the workers to exit.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.wg.Wait()
		return
	}
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
}

// worker drains the queue until the pool closes and the queue empties.
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 && p.closed {
			p.mu.Unlock()
			return
		}

		task := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		task()
	}
}
