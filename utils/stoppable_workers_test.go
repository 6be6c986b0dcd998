package utils

import (
	"context"
	"sync/atomic"
	"testing"

	"go.viam.com/test"
)

func TestStoppableWorkers(t *testing.T) {
	var running, canceled int32
	started := make(chan struct{}, 2)
	worker := func(ctx context.Context) {
		atomic.AddInt32(&running, 1)
		started <- struct{}{}
		<-ctx.Done()
		atomic.AddInt32(&canceled, 1)
	}

	sw := NewStoppableWorkers()
	test.That(t, sw.AddWorkers(worker, worker), test.ShouldBeTrue)
	<-started
	<-started
	test.That(t, atomic.LoadInt32(&running), test.ShouldEqual, 2)

	sw.Stop()
	test.That(t, atomic.LoadInt32(&canceled), test.ShouldEqual, 2)

	// workers added after Stop never start
	test.That(t, sw.AddWorkers(worker), test.ShouldBeFalse)
	test.That(t, atomic.LoadInt32(&running), test.ShouldEqual, 2)
	sw.Stop()
}

func TestStoppableWorkersSurvivePanics(t *testing.T) {
	sw := NewStoppableWorkers()
	done := make(chan struct{})
	test.That(t, sw.AddWorkers(func(ctx context.Context) { panic("boom") }), test.ShouldBeTrue)
	test.That(t, sw.AddWorkers(func(ctx context.Context) { close(done) }), test.ShouldBeTrue)
	<-done
	sw.Stop()
}
