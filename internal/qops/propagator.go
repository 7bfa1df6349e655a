package qops

import (
	"github.com/pkg/errors"

	"github.com/Basilewitsch/krotov/internal/quantum"
)

// ErrCollapseNotSupported is returned by [ExpmPropagator] when collapse
// operators are present: the exact exponential covers closed systems only.
var ErrCollapseNotSupported = errors.New(
	"qops: expm propagator does not support collapse operators")

// ExpmPropagator evolves a state by the exact matrix exponential,
// exp(-i·H·dt)|ψ⟩, or exp(+i·H·dt)|ψ⟩ when propagating backwards. It is the
// reference propagator for closed systems: exact but cubic in the Hilbert
// space dimension, so only suitable for small models.
type ExpmPropagator struct{}

// Propagate implements [quantum.Propagator].
func (ExpmPropagator) Propagate(op quantum.Operator, state quantum.State, dt float64, collapse []quantum.Operator, backwards bool) (quantum.State, error) {
	if len(collapse) != 0 {
		return nil, ErrCollapseNotSupported
	}
	h, ok := op.(*Matrix)
	if !ok {
		return nil, errors.Errorf("qops: expm propagator requires a qops.Matrix operator, got %T", op)
	}
	z := complex(0, -dt)
	if backwards {
		z = complex(0, dt)
	}
	return Expm(h, z).Apply(state), nil
}
