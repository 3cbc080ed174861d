package nist

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/whispr-dev/caca/internal/bitfield"
	"github.com/whispr-dev/caca/internal/specialfunc"
)

func init() {
	register("spectral", Spectral)
}

// Spectral is SP 800-22 test 6 (Discrete Fourier Transform / Spectral
// Test), absent from the teacher's stats.go and added per spec.md §4.6
// item 6. The test itself — ±1 encoding, modulus threshold
// sqrt(ln(1/0.05) * n), count-below-threshold vs its expected value — is
// grounded on original_source/include/tests/statistical_tests.hpp's
// DFTTest, which computes the transform with an O(n^2) direct summation;
// here the transform itself is delegated to gonum's real FFT instead of
// reimplementing that loop by hand.
func Spectral(field *bitfield.BitField, alpha float64) Result {
	const name = "spectral"
	n := field.Len()
	if n < 1000 {
		return shortResult(name, n, 1000)
	}
	seq := bits(field)

	x := make([]float64, n)
	for i, b := range seq {
		if b == 1 {
			x[i] = 1.0
		} else {
			x[i] = -1.0
		}
	}

	fft := fourier.NewFFT(int(n))
	coeffs := fft.Coefficients(nil, x)

	half := n / 2
	threshold := math.Sqrt(math.Log(1.0/0.05) * float64(n))
	N0 := uint(0)
	for i := uint(0); i < half; i++ {
		if cmplx.Abs(coeffs[i]) < threshold {
			N0++
		}
	}
	N1 := uint(0.95 * float64(half))
	d := (float64(N0) - float64(N1)) / math.Sqrt(float64(n)*0.95*0.05/4)
	p := specialfunc.Erfc(math.Abs(d) / math.Sqrt2)

	pvalues := map[string]float64{"pValue": p}
	return Result{
		Name:    name,
		PValues: pvalues,
		Metrics: map[string]float64{
			"n": float64(n), "threshold": threshold,
			"observedBelowThreshold": float64(N0), "expectedBelowThreshold": float64(N1),
			"dStatistic": d,
		},
		Passed: verdict(alpha, pvalues),
	}
}
