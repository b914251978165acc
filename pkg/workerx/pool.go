// Package workerx runs CPU-heavy work, such as password hashing, on a bounded
// set of goroutines so request handlers never saturate the scheduler with it.
package workerx

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

var (
	// ErrPoolClosed is returned by Do after Close has been called.
	ErrPoolClosed = errors.New("workerx: pool closed")

	// ErrDispatch wraps every failure to get a task onto, or back from, a
	// worker. It never describes the task's own outcome.
	ErrDispatch = errors.New("workerx: dispatch failed")
)

// Pool bounds concurrent execution of submitted tasks.
type Pool struct {
	sem     *semaphore.Weighted
	size    int64
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New creates a pool running at most size tasks at once. A size of 0 or less
// uses GOMAXPROCS. timeout bounds how long Do waits for a free worker; 0
// waits until the caller's context is done.
func New(size int, timeout time.Duration) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		sem:     semaphore.NewWeighted(int64(size)),
		size:    int64(size),
		timeout: timeout,
	}
}

// Do runs fn on a pool worker and waits for it to finish. The returned error
// only reports dispatch problems (pool closed, no worker within the timeout,
// context done, fn panicked), all wrapping ErrDispatch. Results of fn are
// passed back through its closure.
//
// Once fn has started it runs to completion even if ctx is cancelled.
func (p *Pool) Do(ctx context.Context, fn func()) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("%w: %w", ErrDispatch, ErrPoolClosed)
	}
	p.wg.Add(1)
	p.mu.RUnlock()
	defer p.wg.Done()

	acquireCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := p.sem.Acquire(acquireCtx, 1); err != nil {
		return fmt.Errorf("%w: %w", ErrDispatch, err)
	}

	done := make(chan any, 1)
	go func() {
		defer p.sem.Release(1)
		defer func() { done <- recover() }()
		fn()
	}()

	if r := <-done; r != nil {
		return fmt.Errorf("%w: task panicked: %v", ErrDispatch, r)
	}
	return nil
}

// Close stops accepting work and waits for in-flight tasks to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}

// Size reports the maximum number of concurrent tasks.
func (p *Pool) Size() int { return int(p.size) }
