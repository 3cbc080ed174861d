package nist

import (
	"math"

	"github.com/whispr-dev/caca/internal/bitfield"
	"github.com/whispr-dev/caca/internal/specialfunc"
)

func init() {
	register("serial", func(field *bitfield.BitField, alpha float64) Result {
		return Serial(field, alpha, 2)
	})
	register("approximate_entropy", func(field *bitfield.BitField, alpha float64) Result {
		return ApproximateEntropy(field, alpha, 2)
	})
}

// psiSquared computes the psi-m-squared statistic the Serial test is
// built from, cyclically extending seq by blockLen-1 bits, grounded on
// teacher's testSerial's inline psi closure.
func psiSquared(seq []int, blockLen int) float64 {
	if blockLen <= 0 {
		return 0
	}
	n := len(seq)
	counts := make([]int, 1<<(blockLen+1))
	for i := 0; i < n; i++ {
		k := 1
		for j := 0; j < blockLen; j++ {
			if seq[(i+j)%n] == 0 {
				k *= 2
			} else {
				k = 2*k + 1
			}
		}
		counts[k-1]++
	}
	sum := 0.0
	for i := (1 << blockLen) - 1; i <= (1<<(blockLen+1))-2; i++ {
		sum += float64(counts[i] * counts[i])
	}
	return (sum*float64(int(1<<blockLen)))/float64(n) - float64(n)
}

// Serial is SP 800-22 test 11: compares the frequency of all possible
// overlapping m-bit patterns to a uniform distribution via two nested
// psi-squared differences, grounded on teacher's testSerial.
func Serial(field *bitfield.BitField, alpha float64, blockLen int) Result {
	const name = "serial"
	n := field.Len()
	if n < 1000000 || blockLen < 2 {
		return shortResult(name, n, 1000000)
	}
	seq := bits(field)

	psim0 := psiSquared(seq, blockLen)
	psim1 := psiSquared(seq, blockLen-1)
	psim2 := psiSquared(seq, blockLen-2)
	del1 := psim0 - psim1
	del2 := psim0 - 2.0*psim1 + psim2
	p1 := specialfunc.Q(float64(int(1<<(blockLen-1)))/2.0, del1/2.0)
	p2 := specialfunc.Q(float64(int(1<<(blockLen-2)))/2.0, del2/2.0)
	pvalues := map[string]float64{"pValue1": p1, "pValue2": p2}
	return Result{
		Name:    name,
		PValues: pvalues,
		Metrics: map[string]float64{"n": float64(n), "m": float64(blockLen)},
		Passed:  verdict(alpha, pvalues),
	}
}

// ApproximateEntropy is SP 800-22 test 12, grounded on teacher's
// testApproxEntropy.
func ApproximateEntropy(field *bitfield.BitField, alpha float64, blockLen int) Result {
	const name = "approximate_entropy"
	n := field.Len()
	if n < 100 {
		return shortResult(name, n, 100)
	}
	seq := bits(field)
	seqWrap := make([]int, n+uint(blockLen))
	copy(seqWrap, seq)
	copy(seqWrap[n:], seq[:blockLen])

	ap := make([]float64, 2)
	for bl := blockLen; bl <= blockLen+1; bl++ {
		counts := make([]int, 1<<bl)
		for i := uint(0); i < n; i++ {
			idx := 0
			for j := 0; j < bl; j++ {
				idx = (idx << 1) | seqWrap[i+uint(j)]
			}
			counts[idx]++
		}
		sum := 0.0
		for i := 0; i < len(counts); i++ {
			if counts[i] > 0 {
				sum += float64(counts[i]) * math.Log(float64(counts[i])/float64(n))
			}
		}
		ap[bl-blockLen] = sum / float64(n)
	}
	apen := ap[0] - ap[1]
	chi := 2.0 * float64(n) * (math.Log(2.0) - apen)
	p := specialfunc.Q(float64(int(1<<(blockLen-1))), chi/2.0)
	pvalues := map[string]float64{"pValue": p}
	return Result{
		Name:    name,
		PValues: pvalues,
		Metrics: map[string]float64{"n": float64(n), "m": float64(blockLen), "apen": apen, "chiSqr": chi},
		Passed:  verdict(alpha, pvalues),
	}
}
