// internal/pipeline/pipeline.go
package pipeline

import (
	"runtime"
	"sync"
)

// Pool dispatches tasks with at most Size() running at once.
type Pool struct {
	slots chan struct{}
	wg    sync.WaitGroup
}

// NewPool returns a pool of the given size (<=0 means runtime.NumCPU()).
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Size is the concurrency bound.
func (p *Pool) Size() int { return cap(p.slots) }

// Go schedules fn and returns immediately.
func (p *Pool) Go(fn func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.slots <- struct{}{}
		defer func() { <-p.slots }()
		fn()
	}()
}

// Wait blocks until every task scheduled so far has returned.
func (p *Pool) Wait() { p.wg.Wait() }
