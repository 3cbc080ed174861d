package nist

import (
	"math"
	"strconv"

	"github.com/whispr-dev/caca/internal/bitfield"
	"github.com/whispr-dev/caca/internal/specialfunc"
)

func init() {
	register("random_excursions", RandomExcursions)
	register("random_excursions_variant", RandomExcursionsVariant)
}

// randomWalk builds the partial-sum walk S[i] = sum_{k<=i}(2*bit_k - 1),
// shared by both excursion tests.
func randomWalk(seq []int) []int {
	n := len(seq)
	S := make([]int, n)
	S[0] = 2*seq[0] - 1
	for i := 1; i < n; i++ {
		S[i] = S[i-1] + 2*seq[i] - 1
	}
	return S
}

// RandomExcursions is SP 800-22 test 14, grounded on teacher's
// testRandomExcursions. It visits each of the 8 nonzero states adjacent
// to zero across every zero-crossing cycle of the random walk and
// chi-squares the visit-count distribution against its theoretical one.
func RandomExcursions(field *bitfield.BitField, alpha float64) Result {
	const name = "random_excursions"
	n := field.Len()
	if n < 1000000 {
		return shortResult(name, n, 1000000)
	}
	seq := bits(field)
	S := randomWalk(seq)

	cycles := make([]int, 0, n/10)
	for i := 1; i < len(S); i++ {
		if S[i] == 0 {
			cycles = append(cycles, i)
		}
	}
	J := len(cycles)
	if S[len(S)-1] != 0 {
		J++
	}
	cycles = append(cycles, len(S))

	constraint := math.Max(0.005*math.Sqrt(float64(n)), 500)
	if float64(J) < constraint {
		return numericResult(name, "too few zero-crossing cycles for the excursion distribution to apply")
	}

	stateX := []int{-4, -3, -2, -1, 1, 2, 3, 4}
	pi := [][]float64{
		{0, 0, 0, 0, 0, 0},
		{0.5, 0.25, 0.125, 0.0625, 0.03125, 0.03125},
		{0.75, 0.0625, 0.046875, 0.03515625, 0.0263671875, 0.0791015625},
		{0.8333333333, 0.02777777778, 0.02314814815, 0.01929012346, 0.01607510288, 0.0803755143},
		{0.875, 0.015625, 0.013671875, 0.01196289063, 0.0104675293, 0.0732727051},
	}
	nu := make([][]float64, 6)
	for i := range nu {
		nu[i] = make([]float64, 8)
	}
	start := 0
	stop := cycles[0]
	for j := 1; j <= J; j++ {
		counter := make([]int, 8)
		for i := start; i < stop; i++ {
			if (S[i] >= 1 && S[i] <= 4) || (S[i] >= -4 && S[i] <= -1) {
				b := 3
				if S[i] < 0 {
					b = 4
				}
				counter[S[i]+b]++
			}
		}
		start = cycles[j-1] + 1
		if j < J {
			stop = cycles[j]
		}
		for i := 0; i < 8; i++ {
			switch {
			case counter[i] >= 0 && counter[i] <= 4:
				nu[counter[i]][i]++
			case counter[i] >= 5:
				nu[5][i]++
			}
		}
	}
	pvalues := make(map[string]float64, 8)
	for i := 0; i < 8; i++ {
		x := stateX[i]
		sum := 0.0
		for k := 0; k < 6; k++ {
			exp := float64(J) * pi[int(math.Abs(float64(x)))][k]
			sum += math.Pow(nu[k][i]-exp, 2) / exp
		}
		pvalues[stateKey(x)] = specialfunc.Q(2.5, sum/2.0)
	}
	return Result{
		Name:    name,
		PValues: pvalues,
		Metrics: map[string]float64{"n": float64(n), "cycleCount": float64(J)},
		Passed:  verdict(alpha, pvalues),
	}
}

// RandomExcursionsVariant is SP 800-22 test 15, grounded on teacher's
// testRandomExcursionsVariant.
func RandomExcursionsVariant(field *bitfield.BitField, alpha float64) Result {
	const name = "random_excursions_variant"
	n := field.Len()
	if n < 1000000 {
		return shortResult(name, n, 1000000)
	}
	seq := bits(field)
	S := randomWalk(seq)

	J := 0
	for i := 1; i < len(S); i++ {
		if S[i] == 0 {
			J++
		}
	}
	if S[len(S)-1] != 0 {
		J++
	}
	constraint := math.Max(0.005*math.Sqrt(float64(n)), 500)
	if float64(J) < constraint {
		return numericResult(name, "too few zero-crossing cycles for the excursion distribution to apply")
	}

	stateX := []int{-9, -8, -7, -6, -5, -4, -3, -2, -1, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	pvalues := make(map[string]float64, len(stateX))
	for _, x := range stateX {
		count := 0
		for _, s := range S {
			if s == x {
				count++
			}
		}
		pvalues[stateKey(x)] = specialfunc.Erfc(math.Abs(float64(count)-float64(J)) / math.Sqrt(2.0*float64(J)*(4.0*math.Abs(float64(x))-2.0)))
	}
	return Result{
		Name:    name,
		PValues: pvalues,
		Metrics: map[string]float64{"n": float64(n), "cycleCount": float64(J)},
		Passed:  verdict(alpha, pvalues),
	}
}

func stateKey(x int) string {
	if x < 0 {
		return "x_neg" + strconv.Itoa(-x)
	}
	return "x_pos" + strconv.Itoa(x)
}
