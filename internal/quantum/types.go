package quantum

// State is one quantum state: a Hilbert-space vector or a vectorized density
// matrix. Implementations are immutable; every operation returns a new value.
type State interface {
	// Overlap returns the inner product of the receiver with other,
	// conjugate-linear in the receiver.
	Overlap(other State) complex128

	// Norm returns the 2-norm of the state.
	Norm() float64

	// Scale returns the state multiplied by z.
	Scale(z complex128) State

	// Add returns the elementwise sum of the receiver and other.
	Add(other State) State

	// Adjoint returns the dual representation of the state.
	Adjoint() State
}

// Operator is one term of a Hamiltonian or Liouvillian.
type Operator interface {
	// Apply returns the operator applied to s.
	Apply(s State) State

	// Scale returns the operator multiplied by z.
	Scale(z complex128) Operator

	// Add returns the sum of the receiver and other.
	Add(other Operator) Operator

	// Dagger returns the Hermitian conjugate of the operator.
	Dagger() Operator
}

// Propagator advances a state across a single time interval. The operator
// carries the pulse values for that interval already substituted into every
// control-dependent term. When backwards is true the propagator integrates
// with a reversed sign convention. Any returned error is fatal for the
// optimization run that issued the call.
type Propagator interface {
	Propagate(op Operator, state State, dt float64, collapse []Operator, backwards bool) (State, error)
}

// PropagatorFunc adapts a plain function to the Propagator interface.
type PropagatorFunc func(op Operator, state State, dt float64, collapse []Operator, backwards bool) (State, error)

// Propagate calls f.
func (f PropagatorFunc) Propagate(op Operator, state State, dt float64, collapse []Operator, backwards bool) (State, error) {
	return f(op, state, dt, collapse, backwards)
}
