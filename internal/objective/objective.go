// Package objective describes state-transfer problems: an initial state, a
// target state, and the generator of the dynamics connecting them.
package objective

import (
	"github.com/Basilewitsch/krotov/internal/control"
	"github.com/Basilewitsch/krotov/internal/quantum"
)

// Term is one term of a generator: an operator, optionally multiplied by a
// time-dependent control. A nil Control marks a static term.
type Term struct {
	Op      quantum.Operator
	Control *control.Control
}

// Generator is a Hamiltonian or collapse operator written as a sum of terms,
// H(t) = Σ_i ε_i(t)·H_i with ε ≡ 1 for static terms.
type Generator []Term

// Controls returns the controls driving the generator's terms, in term order,
// with duplicates by identity removed.
func (g Generator) Controls() []*control.Control {
	var out []*control.Control
	seen := make(map[*control.Control]bool)
	for _, term := range g {
		if term.Control == nil || seen[term.Control] {
			continue
		}
		seen[term.Control] = true
		out = append(out, term.Control)
	}
	return out
}

func (g Generator) adjoint() Generator {
	out := make(Generator, len(g))
	for i, term := range g {
		out[i] = Term{Op: term.Op.Dagger(), Control: term.Control}
	}
	return out
}

// Objective is a single state-transfer problem. The same *control.Control may
// appear in several objectives; such controls are optimized as one variable.
type Objective struct {
	// H generates the coherent dynamics.
	H Generator

	// CollapseOps lists dissipation channels, each its own generator.
	CollapseOps []Generator

	// Initial is the state propagated forward from time zero.
	Initial quantum.State

	// Target is the state the optimization drives Initial toward.
	Target quantum.State
}

// Adjoint returns the conjugate objective used for backward propagation:
// every operator Hermitian-conjugated and both states converted to their dual
// representation. Control identities are preserved so that pulse mappings
// derived from the original objective remain valid.
func (o Objective) Adjoint() Objective {
	adj := Objective{
		H:       o.H.adjoint(),
		Initial: o.Initial.Adjoint(),
		Target:  o.Target.Adjoint(),
	}
	if len(o.CollapseOps) > 0 {
		adj.CollapseOps = make([]Generator, len(o.CollapseOps))
		for i, c := range o.CollapseOps {
			adj.CollapseOps[i] = c.adjoint()
		}
	}
	return adj
}
