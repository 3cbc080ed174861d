package nist

import (
	"math"

	"github.com/whispr-dev/caca/internal/bitfield"
	"github.com/whispr-dev/caca/internal/specialfunc"
)

func init() {
	register("universal", Universal)
}

// Universal is SP 800-22 test 9 (Maurer's Universal Statistical Test),
// grounded on teacher's testUniversalMaurer. The L/Q table selection by
// input length is the standard NIST table.
func Universal(field *bitfield.BitField, alpha float64) Result {
	const name = "universal"
	n := field.Len()
	if n < 387840 {
		return shortResult(name, n, 387840)
	}
	seq := bits(field)

	L := uint(5)
	switch {
	case n >= 1059061760:
		L = 16
	case n >= 496435200:
		L = 15
	case n >= 231669760:
		L = 14
	case n >= 107560960:
		L = 13
	case n >= 49643520:
		L = 12
	case n >= 22753280:
		L = 11
	case n >= 10342400:
		L = 10
	case n >= 4654080:
		L = 9
	case n >= 2068480:
		L = 8
	case n >= 904960:
		L = 7
	case n >= 387840:
		L = 6
	}
	Q := 10 * (uint(1) << L)
	if n/L <= Q {
		return numericResult(name, "input too short for the selected block length's initialization segment")
	}
	K := n/L - Q
	p := uint(1) << L
	expected := []float64{0, 0, 0, 0, 0, 0, 5.2177052, 6.1962507, 7.1836656, 8.1764248, 9.1723243, 10.170032, 11.168765, 12.168070, 13.167693, 14.167488, 15.167379}
	variance := []float64{0, 0, 0, 0, 0, 0, 2.954, 3.125, 3.238, 3.311, 3.356, 3.384, 3.401, 3.410, 3.416, 3.419, 3.421}
	T := make([]int, p)

	for i := uint(0); i < Q; i++ {
		idx := 0
		for j := uint(0); j < L; j++ {
			idx = (idx << 1) + seq[i*L+j]
		}
		T[idx] = int(i) + 1
	}
	sum := 0.0
	for i := Q; i < Q+K; i++ {
		idx := 0
		for j := uint(0); j < L; j++ {
			idx = (idx << 1) + seq[i*L+j]
		}
		sum += math.Log(float64(int(i)+1-T[idx])) / math.Log(2)
		T[idx] = int(i) + 1
	}
	phi := sum / float64(K)
	c := 0.7 - 0.8/float64(L) + (4.0+32.0/float64(L))*math.Pow(float64(K), -3.0/float64(L))/15.0
	sigma := c * math.Sqrt(variance[L]/float64(K))
	arg := math.Abs(phi-expected[L]) / (math.Sqrt2 * sigma)
	p_ := specialfunc.Erfc(arg)
	pvalues := map[string]float64{"pValue": p_}
	return Result{
		Name:    name,
		PValues: pvalues,
		Metrics: map[string]float64{"n": float64(n), "L": float64(L), "Q": float64(Q), "K": float64(K), "phi": phi, "expected": expected[L], "sigma": sigma},
		Passed:  verdict(alpha, pvalues),
	}
}
