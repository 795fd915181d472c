// Package worker runs reconciliation jobs on a fixed set of goroutines.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

var ErrStopped = errors.New("worker pool stopped")

type task func()

type Pool struct {
	wg   sync.WaitGroup
	jobs chan task
	log  zerolog.Logger

	mu      sync.RWMutex
	stopped bool
}

func NewPool(n int, log zerolog.Logger) *Pool {
	if n <= 0 {
		n = 1
	}
	p := &Pool{jobs: make(chan task, n*4), log: log}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.run(job)
			}
		}()
	}
	return p
}

// A panicking job must not take its worker down with it.
func (p *Pool) run(job task) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Msg("worker job panicked")
		}
	}()
	job()
}

// Submit queues f, blocking while the queue is full.
func (p *Pool) Submit(ctx context.Context, f func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	select {
	case p.jobs <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Each runs fn(i) for i in [0, n) on the pool and waits for all submitted calls.
// When submission stops early the error is returned after in-flight calls finish.
func (p *Pool) Each(ctx context.Context, n int, fn func(i int)) error {
	var wg sync.WaitGroup
	var err error
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		if err = p.Submit(ctx, func() {
			defer wg.Done()
			fn(i)
		}); err != nil {
			wg.Done()
			break
		}
	}
	wg.Wait()
	return err
}

// Stop drains queued jobs and waits for the workers to exit.
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
