package nist

import (
	"math"

	"github.com/whispr-dev/caca/internal/bitfield"
	"github.com/whispr-dev/caca/internal/specialfunc"
)

func init() {
	register("linear_complexity", func(field *bitfield.BitField, alpha float64) Result {
		return LinearComplexity(field, alpha, 500)
	})
}

// LinearComplexity is SP 800-22 test 10: runs the Berlekamp-Massey
// algorithm over fixed-size blocks and chi-squares the resulting linear
// complexity distribution, grounded on teacher's testLinearComplexity.
func LinearComplexity(field *bitfield.BitField, alpha float64, blockSize uint) Result {
	const name = "linear_complexity"
	n := field.Len()
	if n < 1000000 || blockSize == 0 {
		return shortResult(name, n, 1000000)
	}
	K := n / blockSize
	if K == 0 {
		return shortResult(name, n, blockSize)
	}
	seq := bits(field)

	pi := []float64{0.01047, 0.03125, 0.12500, 0.50000, 0.25000, 0.06250, 0.020833}
	nu := make([]float64, 7)

	for blk := uint(0); blk < K; blk++ {
		L := berlekampMasseyComplexity(seq[blk*blockSize : blk*blockSize+blockSize])

		M := float64(blockSize)
		sign := 1.0
		if int(M+1)%2 == 0 {
			sign = -1.0
		}
		mean := M/2.0 + (9.0+sign)/36.0 - (1.0/math.Pow(2, M))*(M/3.0+2.0/9.0)
		if int(blockSize)%2 != 0 {
			sign = -1.0
		} else {
			sign = 1.0
		}
		Tp := sign*(float64(L)-mean) + 2.0/9.0

		switch {
		case Tp <= -2.5:
			nu[0]++
		case Tp <= -1.5:
			nu[1]++
		case Tp <= -0.5:
			nu[2]++
		case Tp <= 0.5:
			nu[3]++
		case Tp <= 1.5:
			nu[4]++
		case Tp <= 2.5:
			nu[5]++
		default:
			nu[6]++
		}
	}
	chi := 0.0
	for i := 0; i < 7; i++ {
		exp := float64(K) * pi[i]
		chi += math.Pow(nu[i]-exp, 2) / exp
	}
	p := specialfunc.Q(6.0/2.0, chi/2.0)
	pvalues := map[string]float64{"pValue": p}
	return Result{
		Name:    name,
		PValues: pvalues,
		Metrics: map[string]float64{"n": float64(n), "M": float64(blockSize), "K": float64(K), "chiSqr": chi},
		Passed:  verdict(alpha, pvalues),
	}
}

// berlekampMasseyComplexity returns the linear complexity of a bit
// sequence over GF(2), identical in structure to the inline
// Berlekamp-Massey loop in teacher's testLinearComplexity, factored out
// for testability.
func berlekampMasseyComplexity(seq []int) int {
	M := len(seq)
	L := 0
	m := -1
	C := make([]int, M)
	B := make([]int, M)
	C[0], B[0] = 1, 1
	for N := 0; N < M; N++ {
		d := seq[N]
		for i := 1; i <= L; i++ {
			d ^= C[i] & seq[N-i]
		}
		if d == 1 {
			T := make([]int, M)
			copy(T, C)
			for j := 0; j < M; j++ {
				if B[j] == 1 && j+N-m < M {
					C[j+N-m] ^= 1
				}
			}
			if L <= N/2 {
				L = N + 1 - L
				m = N
				B = T
			}
		}
	}
	return L
}
