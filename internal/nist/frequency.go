package nist

import (
	"math"

	"github.com/whispr-dev/caca/internal/bitfield"
	"github.com/whispr-dev/caca/internal/specialfunc"
)

func init() {
	register("frequency", Frequency)
	register("block_frequency", func(field *bitfield.BitField, alpha float64) Result {
		return BlockFrequency(field, alpha, 128)
	})
	register("runs", Runs)
	register("longest_run", LongestRun)
}

// Frequency is SP 800-22 test 1 (Monobit): compares the proportion of ones
// to 1/2 via a normal approximation, grounded on teacher's testFrequency.
func Frequency(field *bitfield.BitField, alpha float64) Result {
	const name = "frequency"
	n := field.Len()
	if n < 100 {
		return shortResult(name, n, 100)
	}
	seq := bits(field)
	sum := 0
	for _, b := range seq {
		if b == 1 {
			sum++
		} else {
			sum--
		}
	}
	sObs := math.Abs(float64(sum)) / math.Sqrt(float64(n))
	p := specialfunc.Erfc(sObs / math.Sqrt2)
	pvalues := map[string]float64{"pValue": p}
	return Result{
		Name:    name,
		PValues: pvalues,
		Metrics: map[string]float64{"n": float64(n), "sSum": float64(sum), "sObs": sObs},
		Passed:  verdict(alpha, pvalues),
	}
}

// BlockFrequency is SP 800-22 test 2: chi-square over per-block ones
// proportions, grounded on teacher's testBlockFrequency(seq, M).
func BlockFrequency(field *bitfield.BitField, alpha float64, blockSize uint) Result {
	const name = "block_frequency"
	n := field.Len()
	if n < 100 || blockSize == 0 {
		return shortResult(name, n, 100)
	}
	N := n / blockSize
	if N == 0 {
		return shortResult(name, n, blockSize)
	}
	seq := bits(field)
	chi := 0.0
	for i := uint(0); i < N; i++ {
		sum := 0
		for j := i * blockSize; j < i*blockSize+blockSize; j++ {
			sum += seq[j]
		}
		pi := float64(sum) / float64(blockSize)
		chi += math.Pow(pi-0.5, 2)
	}
	chi *= 4.0 * float64(blockSize)
	p := specialfunc.Q(float64(N)/2.0, chi/2.0)
	pvalues := map[string]float64{"pValue": p}
	return Result{
		Name:    name,
		PValues: pvalues,
		Metrics: map[string]float64{"n": float64(n), "M": float64(blockSize), "N": float64(N), "chiSqr": chi},
		Passed:  verdict(alpha, pvalues),
	}
}

// Runs is SP 800-22 test 3, grounded on teacher's testRuns. It is
// preconditioned on the proportion of ones being close enough to 1/2 that
// the runs statistic is even meaningful (the Frequency test's own
// tau-bound), matching the original's early-exit behavior.
func Runs(field *bitfield.BitField, alpha float64) Result {
	const name = "runs"
	n := field.Len()
	if n < 100 {
		return shortResult(name, n, 100)
	}
	seq := bits(field)
	pi := float64(sumInt(seq)) / float64(n)
	tau := 2.0 / math.Sqrt(float64(n))
	if math.Abs(pi-0.5) > tau {
		return numericResult(name, "proportion of ones too far from 1/2 for the runs approximation to apply")
	}
	vObs := 1
	for i := 1; i < len(seq); i++ {
		if seq[i] != seq[i-1] {
			vObs++
		}
	}
	temp := (float64(vObs) - 2.0*float64(n)*pi*(1.0-pi)) / (2.0 * pi * (1.0 - pi) * math.Sqrt(2.0*float64(n)))
	p := specialfunc.Erfc(math.Abs(temp))
	pvalues := map[string]float64{"pValue": p}
	return Result{
		Name:    name,
		PValues: pvalues,
		Metrics: map[string]float64{"n": float64(n), "vObs": float64(vObs), "piObs": pi},
		Passed:  verdict(alpha, pvalues),
	}
}

// LongestRun is SP 800-22 test 4, grounded on teacher's testLongestRun;
// the block size and category boundaries are the standard NIST table
// selected by input length.
func LongestRun(field *bitfield.BitField, alpha float64) Result {
	const name = "longest_run"
	n := field.Len()
	if n < 128 {
		return shortResult(name, n, 128)
	}
	seq := bits(field)

	var K, M uint
	var piVal []float64
	// lowCategoryMax is the largest run length that still falls in
	// category 0 for this M, per the standard SP 800-22 table: runs at
	// or below it are merged into v0, runs at or above lowCategoryMax+K
	// are merged into vK, and everything between gets its own category.
	var lowCategoryMax uint
	switch {
	case n < 6272:
		K, M, lowCategoryMax = 3, 8, 1
		piVal = []float64{0.21484375, 0.3671875, 0.23046875, 0.1875}
	case n < 750000:
		K, M, lowCategoryMax = 5, 128, 4
		piVal = []float64{0.1174035788, 0.242955959, 0.249363483, 0.17517706, 0.102701071, 0.112398847}
	default:
		K, M, lowCategoryMax = 6, 10000, 10
		piVal = []float64{0.0882, 0.2092, 0.2483, 0.1933, 0.1208, 0.0675, 0.0727}
	}
	N := n / M
	nu := make([]int, K+1)
	for i := uint(0); i < N; i++ {
		maxRun, cur := 0, 0
		for j := uint(0); j < M; j++ {
			if seq[i*M+j] == 1 {
				cur++
				if cur > maxRun {
					maxRun = cur
				}
			} else {
				cur = 0
			}
		}
		idx := int(maxRun) - int(lowCategoryMax)
		if idx < 0 {
			idx = 0
		}
		if idx > int(K) {
			idx = int(K)
		}
		nu[idx]++
	}
	chi := 0.0
	for i := uint(0); i <= K; i++ {
		chi += math.Pow(float64(nu[i])-float64(N)*piVal[i], 2) / (float64(N) * piVal[i])
	}
	p := specialfunc.Q(float64(K)/2.0, chi/2.0)
	pvalues := map[string]float64{"pValue": p}
	return Result{
		Name:    name,
		PValues: pvalues,
		Metrics: map[string]float64{"n": float64(n), "M": float64(M), "N": float64(N), "chiSqr": chi},
		Passed:  verdict(alpha, pvalues),
	}
}
