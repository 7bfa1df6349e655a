// Package quantum defines the core state and operator contracts for quantum
// optimal control.
//
// The package holds the fundamental interfaces consumed by the optimization
// engine:
//
//   - [State]: a quantum state with overlap, norm and scaling operations
//   - [Operator]: a Hamiltonian or Liouvillian term acting on states
//   - [Propagator]: single-interval time evolution
//
// All state and operator operations return new values; implementations must
// never mutate their receiver. This keeps propagation of independent
// objectives safe to run concurrently.
//
// # Example
//
//	psi := qops.Basis(2, 0)
//	prop := qops.ExpmPropagator{}
//	next, _ := prop.Propagate(h, psi, 0.01, nil, false)
package quantum
