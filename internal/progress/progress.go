// Package progress implements C9 (ProgressSink) from spec.md §4.8: a
// non-blocking observer interface that core components report iteration
// and per-test progress through, without depending on how it's rendered.
package progress

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Sink is the interface spec.md §4.8 calls ProgressSink. Per spec.md §5/§4.8,
// Update and Complete must never block the caller (CAProcessor.Run,
// TestRunner.Run): a slow sink must not stall the computation. Noop,
// Console, and Zap below render synchronously and are intended to be
// wrapped in Async rather than handed to core components directly.
type Sink interface {
	Update(taskName string, processed, total uint64)
	Complete(taskName string)
}

// Noop discards every event. It is the default when no sink is configured.
type Noop struct{}

func (Noop) Update(string, uint64, uint64) {}
func (Noop) Complete(string)               {}

// Console prints one line per event to stdout via fmt, matching the
// original source's plain stderr progress ticker.
type Console struct{}

func (Console) Update(taskName string, processed, total uint64) {
	fmt.Printf("%s: %d/%d\n", taskName, processed, total)
}

func (Console) Complete(taskName string) {
	fmt.Printf("%s: done\n", taskName)
}

// Zap reports progress as structured log records at Debug level, for runs
// where the console is reserved for the final report.
type Zap struct {
	Logger *zap.Logger
}

func (z Zap) Update(taskName string, processed, total uint64) {
	z.Logger.Debug("progress",
		zap.String("task", taskName),
		zap.Uint64("processed", processed),
		zap.Uint64("total", total),
	)
}

func (z Zap) Complete(taskName string) {
	z.Logger.Debug("progress complete", zap.String("task", taskName))
}

type event struct {
	updated, complete bool
	processed, total  uint64
}

// Async wraps a Sink so that a slow or blocking renderer (Console, Zap,
// anything doing I/O) cannot stall the core. Update/Complete only ever
// record the latest Update and whether Complete was called, per task
// name, and wake a single background
// goroutine; bursts of calls for the same task while the inner sink is
// still rendering coalesce into one render of the latest state instead
// of queuing unboundedly, which is what spec.md §4.8's "free to throttle"
// allowance is for.
type Async struct {
	inner Sink

	mu      sync.Mutex
	pending map[string]event

	wake chan struct{}
	done chan struct{}
	exit chan struct{}
}

// NewAsync starts the background dispatcher and returns the wrapped sink.
// Callers must call Close to flush any pending events before exiting.
func NewAsync(inner Sink) *Async {
	a := &Async{
		inner:   inner,
		pending: make(map[string]event),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		exit:    make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) Update(taskName string, processed, total uint64) {
	a.mu.Lock()
	e := a.pending[taskName]
	e.updated, e.processed, e.total = true, processed, total
	a.pending[taskName] = e
	a.mu.Unlock()
	a.notify()
}

func (a *Async) Complete(taskName string) {
	a.mu.Lock()
	e := a.pending[taskName]
	e.complete = true
	a.pending[taskName] = e
	a.mu.Unlock()
	a.notify()
}

// Close signals the background goroutine to drain whatever is pending one
// last time and stop. It blocks until that final drain completes.
func (a *Async) Close() {
	close(a.done)
	<-a.exit
}

func (a *Async) notify() {
	select {
	case a.wake <- struct{}{}:
	default:
	}
}

func (a *Async) run() {
	defer close(a.exit)
	for {
		select {
		case <-a.wake:
			a.drain()
		case <-a.done:
			a.drain()
			return
		}
	}
}

func (a *Async) drain() {
	a.mu.Lock()
	batch := a.pending
	a.pending = make(map[string]event)
	a.mu.Unlock()

	for name, e := range batch {
		if e.updated {
			a.inner.Update(name, e.processed, e.total)
		}
		if e.complete {
			a.inner.Complete(name)
		}
	}
}

var _ Sink = (*Async)(nil)
