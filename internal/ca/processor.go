// Package ca implements C4 (CAKernel) and C5 (CAProcessor) from spec.md
// §4.3/§4.4: a pure per-cell rule+neighborhood evaluator and the
// double-buffered, multi-threaded driver that iterates it N times.
package ca

import (
	"context"
	"runtime"

	"github.com/pkg/errors"
	"github.com/sourcegraph/conc/pool"

	"github.com/whispr-dev/caca/internal/apperr"
	"github.com/whispr-dev/caca/internal/bitfield"
	"github.com/whispr-dev/caca/internal/progress"
	"github.com/whispr-dev/caca/internal/vectortier"
)

// State is the processor's lifecycle, per spec.md §4.4: Idle -> Iterating -> Done.
type State int

const (
	Idle State = iota
	Iterating
	Done
)

// Processor is a single-use CA driver: construct with NewProcessor, call
// Run once, discard. It owns exactly two BitFields of equal length
// (current, next) and swaps them between iterations.
type Processor struct {
	current *bitfield.BitField
	next    *bitfield.BitField
	cfg     config
	tier    vectortier.Tier
	threads int
	sink    progress.Sink
	state   State
}

// Option configures a Processor at construction time.
type Option func(*Processor)

// WithThreads overrides the worker count; the default is GOMAXPROCS.
func WithThreads(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.threads = n
		}
	}
}

// WithProgressSink wires a ProgressSink (C9); the zero value is a no-op sink.
func WithProgressSink(sink progress.Sink) Option {
	return func(p *Processor) {
		if sink != nil {
			p.sink = sink
		}
	}
}

// WithCustomRule installs the predicate backing Rule Custom.
func WithCustomRule(fn CustomFunc) Option {
	return func(p *Processor) {
		p.cfg.customFunc = fn
	}
}

// WithWidth sets the 2-D grid width (0 = auto, per spec.md §3 Grid geometry).
func WithWidth(width uint) Option {
	return func(p *Processor) {
		p.cfg.width, p.cfg.height = gridDims(p.current.Len(), width)
	}
}

// NewProcessor constructs a processor over data for the given rule and
// neighborhood. Grid dimensions default to auto (width = floor(sqrt(n))).
func NewProcessor(data *bitfield.BitField, rule Rule, neighborhood Neighborhood, tier vectortier.Tier, opts ...Option) *Processor {
	width, height := gridDims(data.Len(), 0)
	p := &Processor{
		current: data.Clone(),
		next:    bitfield.New(data.Len()),
		cfg: config{
			rule:         rule,
			neighborhood: neighborhood,
			width:        width,
			height:       height,
		},
		tier:    tier,
		threads: runtime.GOMAXPROCS(0),
		sink:    progress.Noop{},
		state:   Idle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewProcessorFromBytes is a convenience constructor over a raw byte
// slice, unpacked MSB-first via bitfield.FromBytes. It mirrors the
// original source's implicit "construct a CA processor directly from
// bytes" convenience (original_source/include/ca/cellular_automata.hpp's
// dual BitSequence/ByteSequence constructors).
func NewProcessorFromBytes(data []byte, rule Rule, neighborhood Neighborhood, tier vectortier.Tier, opts ...Option) *Processor {
	return NewProcessor(bitfield.FromBytes(data), rule, neighborhood, tier, opts...)
}

type chunk struct{ start, end uint }

func partition(n uint, workers int) []chunk {
	if workers < 1 {
		workers = 1
	}
	if uint(workers) > n {
		workers = int(n)
	}
	if workers == 0 {
		return nil
	}
	// Chunk boundaries are rounded up to whole 64-bit words, so no two
	// workers write into the same backing word of the destination field.
	chunkSize := (n/uint(workers) + 63) &^ 63
	chunks := make([]chunk, 0, workers)
	for i := 0; i < workers; i++ {
		start := uint(i) * chunkSize
		end := start + chunkSize
		if i == workers-1 || end > n {
			end = n
		}
		if start < end {
			chunks = append(chunks, chunk{start, end})
		}
	}
	return chunks
}

// Run iterates the kernel N times and returns the final BitField. N = 0 is
// valid and returns the input unchanged (spec.md §4.4 failure model,
// testable property 4). Cancellation is checked between iterations; a
// cancelled run returns apperr.Cancelled with the BitField produced by the
// last completed iteration.
func (p *Processor) Run(ctx context.Context, iterations uint) (*bitfield.BitField, error) {
	const taskName = "ca.iterate"
	p.state = Iterating

	if iterations == 0 {
		p.state = Done
		p.sink.Complete(taskName)
		return p.current, nil
	}

	chunks := partition(p.current.Len(), p.threads)

	for iter := uint(0); iter < iterations; iter++ {
		select {
		case <-ctx.Done():
			return p.current, apperr.Wrap(apperr.Cancelled, ctx.Err())
		default:
		}

		if err := p.runIteration(chunks); err != nil {
			p.state = Done
			return p.current, err
		}

		p.current, p.next = p.next, p.current
		p.sink.Update(taskName, uint64(iter+1), uint64(iterations))
	}

	p.state = Done
	p.sink.Complete(taskName)
	return p.current, nil
}

// runIteration dispatches one CA step across the worker pool. All reads of
// p.current happen-before any write of p.next within the pool because each
// worker owns a disjoint, word-aligned [start,end) slice of p.next (see
// partition) — no locking is needed
// on the hot path, per spec.md §5.
func (p *Processor) runIteration(chunks []chunk) (err error) {
	wp := pool.New().WithMaxGoroutines(p.threads)
	for _, c := range chunks {
		start, end := c.start, c.end
		wp.Go(func() {
			applyRange(p.tier, p.cfg, p.current, p.next, start, end)
		})
	}
	defer func() {
		if r := recover(); r != nil {
			err = apperr.Newf(apperr.WorkerFailed, "ca: worker panic: %v", r)
		}
	}()
	wp.Wait()
	return nil
}

// RuleName returns a human-readable rule label, matching the original
// source's CellularAutomataProcessor::getRuleName.
func RuleName(r Rule) string {
	switch r {
	case Rule30:
		return "Rule 30 (Chaotic)"
	case Rule82:
		return "Rule 82 (Random-like)"
	case Rule110:
		return "Rule 110 (Universal)"
	case Rule150:
		return "Rule 150 (Linear)"
	case RuleCustom:
		return "Custom Rule"
	default:
		return errors.Errorf("rule %d", uint8(r)).Error()
	}
}
