package nist

import (
	"math"

	"github.com/whispr-dev/caca/internal/bitfield"
	"github.com/whispr-dev/caca/internal/specialfunc"
)

func init() {
	register("cumulative_sums", CumulativeSums)
}

// CumulativeSums is SP 800-22 test 13: tracks the maximal excursion of
// the partial-sum random walk, forward and reverse, grounded on teacher's
// testCumulativeSums.
func CumulativeSums(field *bitfield.BitField, alpha float64) Result {
	const name = "cumulative_sums"
	n := field.Len()
	if n < 100 {
		return shortResult(name, n, 100)
	}
	seq := bits(field)

	pF, zFwd := cusumPValue(seq, false)
	if zFwd == 0 {
		return numericResult(name, "forward random walk never left the origin")
	}
	pR, zRev := cusumPValue(seq, true)
	if zRev == 0 {
		pvalues := map[string]float64{"pValueFWD": pF, "pValueREV": 1.0}
		return Result{Name: name, PValues: pvalues, Passed: verdict(alpha, pvalues)}
	}
	pvalues := map[string]float64{"pValueFWD": pF, "pValueREV": pR}
	return Result{
		Name:    name,
		PValues: pvalues,
		Metrics: map[string]float64{"n": float64(n)},
		Passed:  verdict(alpha, pvalues),
	}
}

func cusumPValue(seq []int, reverse bool) (float64, int) {
	n := len(seq)
	S, sup, inf := 0, 0, 0
	walk := func(i int) int {
		if reverse {
			return n - 1 - i
		}
		return i
	}
	for i := 0; i < n; i++ {
		if seq[walk(i)] == 1 {
			S++
		} else {
			S--
		}
		if S > sup {
			sup++
		}
		if S < inf {
			inf--
		}
	}
	z := maxInt(sup, -inf)
	if z == 0 {
		return math.NaN(), 0
	}
	sum1 := 0.0
	for k := int(math.Trunc((float64(-n)/float64(z) + 1.0) / 4.0)); k <= int(math.Trunc((float64(n)/float64(z)-1.0)/4.0)); k++ {
		sum1 += specialfunc.NormalCDF(((4.0*float64(k)+1.0)*float64(z))/math.Sqrt(float64(n))) -
			specialfunc.NormalCDF(((4.0*float64(k)-1.0)*float64(z))/math.Sqrt(float64(n)))
	}
	sum2 := 0.0
	for k := int(math.Trunc((float64(-n)/float64(z) - 3.0) / 4.0)); k <= int(math.Trunc((float64(n)/float64(z)-1.0)/4.0)); k++ {
		sum2 += specialfunc.NormalCDF(((4.0*float64(k)+3.0)*float64(z))/math.Sqrt(float64(n))) -
			specialfunc.NormalCDF(((4.0*float64(k)+1.0)*float64(z))/math.Sqrt(float64(n)))
	}
	return 1.0 - sum1 + sum2, z
}
