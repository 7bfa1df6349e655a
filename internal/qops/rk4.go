package qops

import (
	"github.com/Basilewitsch/krotov/internal/quantum"
)

// RK4Propagator integrates the Schrodinger equation with the classical
// fourth-order Runge-Kutta scheme. Unlike [ExpmPropagator] it accepts
// static collapse operators, folding them into the anti-Hermitian decay
// term -1/2 Σ C†C, so norms shrink under dissipation. Split intervals
// with Substeps when the grid is coarse.
type RK4Propagator struct {
	// Substeps splits each interval into equal pieces. Zero means one.
	Substeps int
}

// Propagate implements [quantum.Propagator].
func (p RK4Propagator) Propagate(op quantum.Operator, state quantum.State, dt float64, collapse []quantum.Operator, backwards bool) (quantum.State, error) {
	steps := p.Substeps
	if steps <= 0 {
		steps = 1
	}

	sign := complex(0, -1)
	if backwards {
		sign = complex(0, 1)
	}

	daggers := make([]quantum.Operator, len(collapse))
	for i, c := range collapse {
		daggers[i] = c.Dagger()
	}

	deriv := func(s quantum.State) quantum.State {
		d := op.Apply(s).Scale(sign)
		for i, c := range collapse {
			d = d.Add(daggers[i].Apply(c.Apply(s)).Scale(complex(-0.5, 0)))
		}
		return d
	}

	h := dt / float64(steps)
	half := complex(h/2, 0)
	for n := 0; n < steps; n++ {
		k1 := deriv(state)
		k2 := deriv(state.Add(k1.Scale(half)))
		k3 := deriv(state.Add(k2.Scale(half)))
		k4 := deriv(state.Add(k3.Scale(complex(h, 0))))

		sum := k1.Add(k2.Scale(2)).Add(k3.Scale(2)).Add(k4)
		state = state.Add(sum.Scale(complex(h/6, 0)))
	}

	return state, nil
}
