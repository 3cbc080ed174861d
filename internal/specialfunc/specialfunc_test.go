package specialfunc_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whispr-dev/caca/internal/specialfunc"
)

func TestErfcMatchesStdlib(t *testing.T) {
	for _, x := range []float64{-3, -1, -0.5, 0, 0.5, 1, 3} {
		assert.InDelta(t, math.Erfc(x), specialfunc.Erfc(x), 1e-12)
	}
}

func TestQBoundaryValues(t *testing.T) {
	// Q(a, 0) = 1 for any valid a.
	require.Equal(t, 1.0, specialfunc.Q(2.5, 0))
	// Q is monotonically decreasing in x.
	prev := 1.0
	for x := 0.1; x < 20; x += 0.5 {
		q := specialfunc.Q(3, x)
		require.LessOrEqual(t, q, prev+1e-12)
		prev = q
	}
}

// TestQAgainstChiSquareGrid checks Q(a,x) against a small grid of known
// chi-square tail probabilities, for testable property 7 in spec.md §8.
// The critical values are tabulated to six decimals, so the check is
// to within 1e-6.
func TestQAgainstChiSquareGrid(t *testing.T) {
	cases := []struct {
		df       float64
		chiSq    float64
		expected float64
	}{
		{df: 1, chiSq: 3.841459, expected: 0.05},
		{df: 2, chiSq: 5.991465, expected: 0.05},
		{df: 5, chiSq: 11.070498, expected: 0.05},
		{df: 10, chiSq: 18.307038, expected: 0.05},
	}
	for _, c := range cases {
		got := specialfunc.Q(c.df/2, c.chiSq/2)
		assert.InDelta(t, c.expected, got, 1e-6)
	}
}

func TestQNaNOutsideDomain(t *testing.T) {
	assert.True(t, math.IsNaN(specialfunc.Q(0, 1)))
	assert.True(t, math.IsNaN(specialfunc.Q(1, -1)))
}

func TestPPlusQIsOne(t *testing.T) {
	assert.InDelta(t, 1.0, specialfunc.P(4, 6)+specialfunc.Q(4, 6), 1e-12)
}
