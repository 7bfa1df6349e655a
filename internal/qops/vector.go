package qops

import (
	"math/cmplx"

	"gonum.org/v1/gonum/blas/cblas128"

	"github.com/Basilewitsch/krotov/internal/quantum"
)

// Vector is a dense complex state vector implementing [quantum.State].
type Vector struct {
	data []complex128
}

// NewVector returns a vector holding a copy of amps.
func NewVector(amps []complex128) *Vector {
	data := make([]complex128, len(amps))
	copy(data, amps)
	return &Vector{data: data}
}

// Zero returns the n-dimensional zero vector.
func Zero(n int) *Vector {
	return &Vector{data: make([]complex128, n)}
}

// Basis returns the k-th canonical basis vector in n dimensions.
func Basis(n, k int) *Vector {
	if k < 0 || k >= n {
		panic("qops: basis index out of range")
	}
	v := Zero(n)
	v.data[k] = 1
	return v
}

// Dim returns the dimension of the vector.
func (v *Vector) Dim() int { return len(v.data) }

// At returns the i-th amplitude.
func (v *Vector) At(i int) complex128 { return v.data[i] }

// Amplitudes returns a copy of the amplitude slice.
func (v *Vector) Amplitudes() []complex128 {
	out := make([]complex128, len(v.data))
	copy(out, v.data)
	return out
}

func (v *Vector) blas() cblas128.Vector {
	return cblas128.Vector{N: len(v.data), Inc: 1, Data: v.data}
}

// Overlap returns ⟨v|w⟩, conjugating the receiver's amplitudes.
func (v *Vector) Overlap(other quantum.State) complex128 {
	w := mustVector(other)
	if len(w.data) != len(v.data) {
		panic("qops: vector dimension mismatch")
	}
	return cblas128.Dotc(v.blas(), w.blas())
}

// Norm returns the 2-norm of the vector.
func (v *Vector) Norm() float64 {
	return cblas128.Nrm2(v.blas())
}

// Scale returns z·v.
func (v *Vector) Scale(z complex128) quantum.State {
	c := NewVector(v.data)
	cblas128.Scal(z, c.blas())
	return c
}

// Add returns v + other.
func (v *Vector) Add(other quantum.State) quantum.State {
	w := mustVector(other)
	if len(w.data) != len(v.data) {
		panic("qops: vector dimension mismatch")
	}
	c := NewVector(v.data)
	cblas128.Axpy(1, w.blas(), c.blas())
	return c
}

// Adjoint returns the dual (conjugated) vector.
func (v *Vector) Adjoint() quantum.State {
	c := Zero(len(v.data))
	for i, a := range v.data {
		c.data[i] = cmplx.Conj(a)
	}
	return c
}

func mustVector(s quantum.State) *Vector {
	v, ok := s.(*Vector)
	if !ok {
		panic("qops: state is not a qops.Vector")
	}
	return v
}
