package utils

import (
	"context"
	"sync"

	goutils "go.viam.com/utils"
)

// StoppableWorkers runs goroutines that share one context, canceled by Stop.
type StoppableWorkers struct {
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	running sync.WaitGroup
}

// NewStoppableWorkers returns an empty, running set of workers.
func NewStoppableWorkers() *StoppableWorkers {
	ctx, cancel := context.WithCancel(context.Background())
	return &StoppableWorkers{ctx: ctx, cancel: cancel}
}

// AddWorkers starts every function on its own goroutine. After Stop it starts nothing and
// returns false.
func (sw *StoppableWorkers) AddWorkers(funcs ...func(context.Context)) bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.ctx.Err() != nil {
		return false
	}
	sw.running.Add(len(funcs))
	for _, f := range funcs {
		goutils.PanicCapturingGo(func() {
			defer sw.running.Done()
			f(sw.ctx)
		})
	}
	return true
}

// Stop cancels the workers' context and waits for all of them to return. Repeated calls are no-ops
// once the first has returned.
func (sw *StoppableWorkers) Stop() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.cancel()
	sw.running.Wait()
}
