// Package krotov implements Krotov's method for quantum optimal control:
// iterative pulse optimization driven by a backward propagation of costates,
// a coupled forward propagation of the physical states, and a pointwise
// update of every pulse at every time-grid midpoint.
//
// The package defines the optimization driver and its collaborator seams:
//
//   - [Problem]: one optimization — objectives, per-control options,
//     time grid, and the injected collaborators
//   - [ChiConstructor]: boundary costates from the cost functional
//   - [InfoHook]: per-iteration observation, value recorded in the result
//   - [Optimizer]: executes the iterations, produced by [New]
//
// # Example
//
//	opt, _ := krotov.New(krotov.Problem{
//		Objectives:   setup.Objectives,
//		PulseOptions: opts,
//		Grid:         g,
//		Propagator:   qops.ExpmPropagator{},
//		Chi:          functional.ChisSS,
//		IterStop:     20,
//	})
//	res, _ := opt.Run(ctx)
//
// # Thread Safety
//
// An Optimizer runs one optimization at a time; Run must not be called
// concurrently on the same Optimizer. Within a run, concurrency is confined
// to the propagation of separate objectives through the configured parallel
// mapper.
package krotov
