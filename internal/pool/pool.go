// Package pool runs tasks on goroutines while bounding how many are alive at once.
package pool

import (
	"context"
	"sync"

	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"
)

// Pool launches each submitted task on its own goroutine, with at most Ceiling tasks
// in flight. Submitters blocked at the ceiling are admitted in FIFO order. The pool
// also provides the mutex that guards whatever the tasks aggregate into.
type Pool struct {
	ceiling  int
	sem      *semaphore.Weighted
	wg       sync.WaitGroup
	mu       sync.Mutex
	inFlight atomic.Int32
	peak     atomic.Int32
}

// New creates a pool allowing ceiling concurrent tasks.
func New(ceiling int) (*Pool, error) {
	if ceiling <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "pool ceiling must be positive, got %d", ceiling)
	}

	return &Pool{
		ceiling: ceiling,
		sem:     semaphore.NewWeighted(int64(ceiling)),
	}, nil
}

// Submit blocks while the pool is at its ceiling, then starts task. Tasks must not
// call Submit on the same pool.
func (p *Pool) Submit(task func()) {
	// Acquire only fails when the context is done
	_ = p.sem.Acquire(context.Background(), 1)

	p.wg.Add(1)

	current := p.inFlight.Inc()
	for {
		peak := p.peak.Load()
		if current <= peak || p.peak.CAS(peak, current) {
			break
		}
	}

	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)
		defer p.inFlight.Dec()

		task()
	}()
}

// AwaitAll blocks until every submitted task has returned.
func (p *Pool) AwaitAll() {
	p.wg.Wait()
}

// Lock acquires the aggregate mutex.
func (p *Pool) Lock() {
	p.mu.Lock()
}

// Unlock releases the aggregate mutex.
func (p *Pool) Unlock() {
	p.mu.Unlock()
}

// InFlight returns the number of running tasks.
func (p *Pool) InFlight() int {
	return int(p.inFlight.Load())
}

// Peak returns the highest number of tasks that ran at the same time.
func (p *Pool) Peak() int {
	return int(p.peak.Load())
}

// Ceiling returns the maximum number of concurrent tasks.
func (p *Pool) Ceiling() int {
	return p.ceiling
}
