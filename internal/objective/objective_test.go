package objective_test

import (
	"math/cmplx"
	"testing"

	"github.com/Basilewitsch/krotov/internal/control"
	"github.com/Basilewitsch/krotov/internal/objective"
	"github.com/Basilewitsch/krotov/internal/qops"
)

func TestGeneratorControls(t *testing.T) {
	eps := control.NewFunc("eps", func(t float64) float64 { return 1 })
	h := objective.Generator{
		{Op: qops.Identity(2)},
		{Op: qops.MustMatrix(2, 2, []complex128{0, 1, 1, 0}), Control: eps},
		{Op: qops.MustMatrix(2, 2, []complex128{1, 0, 0, -1}), Control: eps},
	}
	controls := h.Controls()
	if len(controls) != 1 {
		t.Fatalf("expected 1 distinct control, got %d", len(controls))
	}
	if controls[0] != eps {
		t.Error("control identity not preserved")
	}
}

func TestAdjoint(t *testing.T) {
	eps := control.NewFunc("eps", func(t float64) float64 { return 1 })
	h1 := qops.MustMatrix(2, 2, []complex128{0, 2i, 0, 0})
	obj := objective.Objective{
		H: objective.Generator{
			{Op: qops.Identity(2)},
			{Op: h1, Control: eps},
		},
		CollapseOps: []objective.Generator{
			{{Op: qops.MustMatrix(2, 2, []complex128{0, 1, 0, 0})}},
		},
		Initial: qops.NewVector([]complex128{1i, 0}),
		Target:  qops.Basis(2, 1),
	}

	adj := obj.Adjoint()

	// operators conjugate-transposed
	am := adj.H[1].Op.(*qops.Matrix)
	if am.At(1, 0) != -2i || am.At(0, 1) != 0 {
		t.Error("Hamiltonian term not conjugate-transposed")
	}
	cm := adj.CollapseOps[0][0].Op.(*qops.Matrix)
	if cm.At(1, 0) != 1 || cm.At(0, 1) != 0 {
		t.Error("collapse term not conjugate-transposed")
	}

	// control identity preserved
	if adj.H[1].Control != eps {
		t.Error("adjoint must keep the control identity")
	}

	// states dualized
	av := adj.Initial.(*qops.Vector)
	if cmplx.Abs(av.At(0)-(-1i)) > 1e-15 {
		t.Errorf("initial state not dualized, got %v", av.At(0))
	}

	// original untouched
	if obj.H[1].Op.(*qops.Matrix).At(0, 1) != 2i {
		t.Error("Adjoint mutated the original objective")
	}
}
