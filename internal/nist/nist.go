// Package nist implements C6 (TestResult/TestRegistry) and C7
// (NistTestSuite) from spec.md §4.5/§4.6: the fifteen-test SP 800-22
// statistical battery, each test producing one or more p-values and a
// pass/fail verdict against a configurable significance level.
//
// Every test here is ported from the teacher's stats.go []int-based
// functions to operate on bitfield.BitField, and every chi-square-derived
// p-value is routed through internal/specialfunc.Q instead of the
// teacher's (and the original C++ source's) exp(-chiSq/2) shortcut, which
// is only the correct tail formula at two degrees of freedom.
package nist

import (
	"math"
	"sort"

	"github.com/whispr-dev/caca/internal/apperr"
	"github.com/whispr-dev/caca/internal/bitfield"
)

// Result is C6's TestResult: one test's outcome. PValues holds every
// p-value the test produces (most tests produce exactly one, keyed
// "pValue"; Serial and Cumulative Sums produce two named variants).
// Err is set for the InputTooShort/NumericError failure modes spec.md §7
// keeps out of the Go error channel — a short or numerically degenerate
// input is a normal *result*, not a function failure — and Metrics["error"]
// is then 1 (InputTooShort) or 2 (NumericError).
type Result struct {
	Name    string
	PValues map[string]float64
	Metrics map[string]float64
	Passed  bool
	Err     error
}

// MinPValue returns the smallest p-value across all variants this test
// produced, or NaN when there are none. The tests' own Passed verdict is
// computed by verdict, not through this method.
func (r Result) MinPValue() float64 {
	if len(r.PValues) == 0 {
		return math.NaN()
	}
	min := math.Inf(1)
	for _, v := range r.PValues {
		if v < min {
			min = v
		}
	}
	return min
}

// TestFunc computes one SP 800-22 test over field at significance level
// alpha. Implementations never mutate field.
type TestFunc func(field *bitfield.BitField, alpha float64) Result

var registry = map[string]TestFunc{}

func register(name string, fn TestFunc) {
	registry[name] = fn
}

// Names returns every registered test name in a stable, sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the test function registered under name, per C6's
// TestRegistry.
func Lookup(name string) (TestFunc, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// bits unpacks field into a []int of 0/1 values, matching the teacher's
// algorithmic convention (stats.go operates on []int throughout); the
// conversion happens once per test rather than littering Get(i) calls
// through ported arithmetic that was written and reasoned about in terms
// of int sequences.
func bits(field *bitfield.BitField) []int {
	n := field.Len()
	out := make([]int, n)
	for i := uint(0); i < n; i++ {
		if field.Get(i) {
			out[i] = 1
		}
	}
	return out
}

func shortResult(name string, n uint, minLen uint) Result {
	return Result{
		Name:    name,
		Metrics: map[string]float64{"error": 1},
		Err: apperr.Newf(apperr.InputTooShort,
			"%s requires at least %d bits, got %d", name, minLen, n),
	}
}

func numericResult(name string, reason string) Result {
	return Result{
		Name:    name,
		Metrics: map[string]float64{"error": 2},
		Err:     apperr.New(apperr.NumericError, name+": "+reason),
	}
}

func verdict(alpha float64, pvalues map[string]float64) bool {
	for _, p := range pvalues {
		if math.IsNaN(p) || p < alpha {
			return false
		}
	}
	return true
}

func sumInt(seq []int) int {
	s := 0
	for _, v := range seq {
		s += v
	}
	return s
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
