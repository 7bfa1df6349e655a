package qops

import (
	"math/cmplx"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"

	"github.com/Basilewitsch/krotov/internal/quantum"
)

// Matrix is a dense row-major complex matrix implementing [quantum.Operator].
type Matrix struct {
	rows, cols int
	data       []complex128
}

// NewMatrix builds a rows×cols matrix from row-major data. A nil data slice
// yields a zero matrix.
func NewMatrix(rows, cols int, data []complex128) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.Errorf("qops: invalid matrix shape %dx%d", rows, cols)
	}
	if data != nil && len(data) != rows*cols {
		return nil, errors.Errorf(
			"qops: %d elements for a %dx%d matrix", len(data), rows, cols)
	}
	m := &Matrix{rows: rows, cols: cols, data: make([]complex128, rows*cols)}
	copy(m.data, data)
	return m, nil
}

// MustMatrix is NewMatrix that panics on malformed input. Intended for
// building fixed model operators.
func MustMatrix(rows, cols int, data []complex128) *Matrix {
	m, err := NewMatrix(rows, cols, data)
	if err != nil {
		panic(err)
	}
	return m
}

// Identity returns the n×n identity matrix.
func Identity(n int) *Matrix {
	m := &Matrix{rows: n, cols: n, data: make([]complex128, n*n)}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// At returns the element at row i, column j.
func (m *Matrix) At(i, j int) complex128 { return m.data[i*m.cols+j] }

// Set assigns the element at row i, column j.
func (m *Matrix) Set(i, j int, z complex128) { m.data[i*m.cols+j] = z }

func (m *Matrix) general() cblas128.General {
	return cblas128.General{Rows: m.rows, Cols: m.cols, Stride: m.cols, Data: m.data}
}

func (m *Matrix) clone() *Matrix {
	c := &Matrix{rows: m.rows, cols: m.cols, data: make([]complex128, len(m.data))}
	copy(c.data, m.data)
	return c
}

// Apply returns m·s.
func (m *Matrix) Apply(s quantum.State) quantum.State {
	v := mustVector(s)
	if v.Dim() != m.cols {
		panic("qops: operator/state dimension mismatch")
	}
	out := Zero(m.rows)
	cblas128.Gemv(blas.NoTrans, 1, m.general(), v.blas(), 0, out.blas())
	return out
}

// Scale returns z·m.
func (m *Matrix) Scale(z complex128) quantum.Operator {
	c := m.clone()
	for i := range c.data {
		c.data[i] *= z
	}
	return c
}

// Add returns m + other.
func (m *Matrix) Add(other quantum.Operator) quantum.Operator {
	o := mustMatrix(other)
	if o.rows != m.rows || o.cols != m.cols {
		panic("qops: matrix dimension mismatch")
	}
	c := m.clone()
	for i := range c.data {
		c.data[i] += o.data[i]
	}
	return c
}

// Dagger returns the conjugate transpose of m.
func (m *Matrix) Dagger() quantum.Operator {
	c := &Matrix{rows: m.cols, cols: m.rows, data: make([]complex128, len(m.data))}
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			c.data[j*c.cols+i] = cmplx.Conj(m.data[i*m.cols+j])
		}
	}
	return c
}

// Mul returns the matrix product m·other.
func (m *Matrix) Mul(other *Matrix) *Matrix {
	if m.cols != other.rows {
		panic("qops: matrix product dimension mismatch")
	}
	out := &Matrix{rows: m.rows, cols: other.cols, data: make([]complex128, m.rows*other.cols)}
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, m.general(), other.general(), 0, out.general())
	return out
}

// IsHermitian reports whether m equals its conjugate transpose to within tol.
func (m *Matrix) IsHermitian(tol float64) bool {
	if m.rows != m.cols {
		return false
	}
	for i := 0; i < m.rows; i++ {
		for j := i; j < m.cols; j++ {
			if cmplx.Abs(m.At(i, j)-cmplx.Conj(m.At(j, i))) > tol {
				return false
			}
		}
	}
	return true
}

func mustMatrix(op quantum.Operator) *Matrix {
	m, ok := op.(*Matrix)
	if !ok {
		panic("qops: operator is not a qops.Matrix")
	}
	return m
}
