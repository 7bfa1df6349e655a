package qops

import (
	"math/cmplx"
	"testing"
)

func TestNewMatrixShapeErrors(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		data       []complex128
	}{
		{"zero rows", 0, 2, nil},
		{"negative cols", 2, -1, nil},
		{"short data", 2, 2, []complex128{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMatrix(tt.rows, tt.cols, tt.data); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestApply(t *testing.T) {
	sx := MustMatrix(2, 2, []complex128{0, 1, 1, 0})
	v := Basis(2, 0)
	w := sx.Apply(v).(*Vector)
	if w.At(0) != 0 || w.At(1) != 1 {
		t.Errorf("σx|0⟩ should be |1⟩, got (%v, %v)", w.At(0), w.At(1))
	}
}

func TestDagger(t *testing.T) {
	m := MustMatrix(2, 2, []complex128{1, 2i, 3, 4})
	d := m.Dagger().(*Matrix)
	if d.At(0, 0) != 1 || d.At(0, 1) != 3 || d.At(1, 0) != -2i || d.At(1, 1) != 4 {
		t.Error("unexpected conjugate transpose")
	}
	// (m†)† = m
	dd := d.Dagger().(*Matrix)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if dd.At(i, j) != m.At(i, j) {
				t.Errorf("double dagger differs at (%d,%d)", i, j)
			}
		}
	}
}

func TestScaleAdd(t *testing.T) {
	m := Identity(2)
	s := m.Scale(2i).Add(m).(*Matrix)
	want := complex128(1 + 2i)
	if s.At(0, 0) != want || s.At(1, 1) != want {
		t.Errorf("expected diagonal %v, got %v", want, s.At(0, 0))
	}
	if s.At(0, 1) != 0 || s.At(1, 0) != 0 {
		t.Error("off-diagonal should stay zero")
	}
}

func TestMul(t *testing.T) {
	sx := MustMatrix(2, 2, []complex128{0, 1, 1, 0})
	sz := MustMatrix(2, 2, []complex128{1, 0, 0, -1})
	// σx·σz = -i·σy
	p := sx.Mul(sz)
	if p.At(0, 0) != 0 || p.At(0, 1) != -1 || p.At(1, 0) != 1 || p.At(1, 1) != 0 {
		t.Error("unexpected product σx·σz")
	}
}

func TestIsHermitian(t *testing.T) {
	sy := MustMatrix(2, 2, []complex128{0, -1i, 1i, 0})
	if !sy.IsHermitian(1e-15) {
		t.Error("σy should be Hermitian")
	}
	m := MustMatrix(2, 2, []complex128{0, 1i, 1i, 0})
	if m.IsHermitian(1e-15) {
		t.Error("matrix with equal off-diagonal i entries is not Hermitian")
	}
}

func TestApplyPreservesInput(t *testing.T) {
	h := MustMatrix(2, 2, []complex128{1, 1i, -1i, 2})
	v := NewVector([]complex128{0.6, 0.8i})
	before := v.Amplitudes()
	h.Apply(v)
	after := v.Amplitudes()
	for i := range before {
		if cmplx.Abs(before[i]-after[i]) != 0 {
			t.Fatal("Apply mutated its input state")
		}
	}
}
