package worker

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/baharkarakas/tradebinder/internal/metrics"
)

var ErrStopped = errors.New("worker pool stopped")

type task func()

type Pool struct {
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
	jobs    chan task
}

func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{jobs: make(chan task, 1024)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				metrics.WorkerQueueDepth.Dec()
				p.run(job)
			}
		}()
	}
	return p
}

func (p *Pool) run(job task) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("worker task panicked", "panic", rec)
		}
	}()
	job()
}

// Submit queues f; it blocks while the queue is full and fails once Stop was called.
func (p *Pool) Submit(f task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	metrics.WorkerQueueDepth.Inc()
	p.jobs <- f
	return nil
}

// Stop drains the queue and waits for the workers to exit.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
