// Package runner implements C8 (TestRunner) from spec.md §4.7: it runs a
// selection of NistTestSuite tests over one BitField, preserving caller
// order in the result slice regardless of completion order, and reports
// progress once per completed test.
package runner

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/whispr-dev/caca/internal/apperr"
	"github.com/whispr-dev/caca/internal/bitfield"
	"github.com/whispr-dev/caca/internal/nist"
	"github.com/whispr-dev/caca/internal/progress"
)

// Runner runs a named selection of nist tests over a field at a fixed
// significance level. It never mutates its input BitField — every
// nist.TestFunc is called with the same shared field, never a copy,
// relying on the contract that tests only read.
type Runner struct {
	alpha     float64
	sink      progress.Sink
	selection []string
	workers   int
}

// Option configures a Runner at construction time.
type Option func(*Runner)

// WithProgressSink wires a ProgressSink (C9).
func WithProgressSink(sink progress.Sink) Option {
	return func(r *Runner) {
		if sink != nil {
			r.sink = sink
		}
	}
}

// WithConcurrency caps how many tests may run at once; 1 runs tests
// sequentially in selection order, matching the original source's
// TestSuite::runTests. The default is 1.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// New builds a Runner over the given test-name selection at significance
// level alpha. An unknown test name is rejected eagerly as a ConfigError
// rather than discovered partway through Run.
func New(alpha float64, selection []string, opts ...Option) (*Runner, error) {
	if alpha <= 0 || alpha >= 1 {
		return nil, apperr.Newf(apperr.ConfigError, "alpha must be in (0,1), got %v", alpha)
	}
	for _, name := range selection {
		if _, ok := nist.Lookup(name); !ok {
			return nil, apperr.Newf(apperr.ConfigError, "unknown test %q", name)
		}
	}
	r := &Runner{
		alpha:     alpha,
		sink:      progress.Noop{},
		selection: append([]string(nil), selection...),
		workers:   1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run executes every selected test over field and returns their results
// in selection order. Cancelling ctx aborts any tests still pending and
// returns the results computed so far alongside an apperr Cancelled
// error; tests already running when cancellation is observed still
// complete (nist.TestFunc has no internal cancellation points — each
// individual test call is treated as an atomic unit of work).
func (r *Runner) Run(ctx context.Context, field *bitfield.BitField) ([]nist.Result, error) {
	const taskName = "nist.run"
	results := make([]nist.Result, len(r.selection))
	total := uint64(len(r.selection))
	var completed atomic.Uint64

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(r.workers)

	for i, name := range r.selection {
		i, name := i, name
		group.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			fn, _ := nist.Lookup(name)
			results[i] = fn(field, r.alpha)
			r.sink.Update(taskName, completed.Add(1), total)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return results, apperr.Wrap(apperr.Cancelled, err)
	}

	r.sink.Complete(taskName)
	return results, nil
}
