package qops

import "math"

// expmTaylorTerms bounds the truncation error below 1e-19 once the scaled
// matrix has 1-norm at most 0.5.
const expmTaylorTerms = 16

// Expm returns exp(z·m) for a square matrix m, computed by scaling and
// squaring around a truncated Taylor series.
func Expm(m *Matrix, z complex128) *Matrix {
	if m.rows != m.cols {
		panic("qops: matrix exponential of a non-square matrix")
	}
	a := mustMatrix(m.Scale(z))

	// Halve until the 1-norm is small enough for the series to converge
	// quickly, then square the result back up.
	squarings := 0
	for norm := a.norm1(); norm > 0.5; norm /= 2 {
		squarings++
	}
	if squarings > 0 {
		a = mustMatrix(a.Scale(complex(math.Exp2(-float64(squarings)), 0)))
	}

	sum := Identity(a.rows)
	term := Identity(a.rows)
	for k := 1; k <= expmTaylorTerms; k++ {
		term = mustMatrix(term.Mul(a).Scale(complex(1/float64(k), 0)))
		sum = mustMatrix(sum.Add(term))
	}
	for s := 0; s < squarings; s++ {
		sum = sum.Mul(sum)
	}
	return sum
}

// norm1 returns the maximum absolute column sum.
func (m *Matrix) norm1() float64 {
	max := 0.0
	for j := 0; j < m.cols; j++ {
		sum := 0.0
		for i := 0; i < m.rows; i++ {
			v := m.data[i*m.cols+j]
			sum += math.Hypot(real(v), imag(v))
		}
		if sum > max {
			max = sum
		}
	}
	return max
}
