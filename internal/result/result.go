// Package result accumulates the history of one optimization run. A Result
// only ever grows: each finished iteration appends its bookkeeping, nothing
// is rewound.
package result

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Basilewitsch/krotov/internal/objective"
	"github.com/Basilewitsch/krotov/internal/quantum"
)

// Result is the accumulated history of an optimization run. The slices
// indexed by iteration (Iters, IterSeconds, InfoVals, TauVals) stay aligned;
// entry 0 describes the propagation of the guess pulses.
type Result struct {
	// RunID uniquely identifies the run.
	RunID string

	Start time.Time
	End   time.Time

	// Tlist is the time grid shared by all controls.
	Tlist []float64

	// Iters lists the completed iteration numbers, starting at 0.
	Iters []int

	// IterSeconds holds whole wall-clock seconds per iteration.
	IterSeconds []int

	// InfoVals holds the info-hook return value per iteration, NaN when no
	// hook was set.
	InfoVals []float64

	// TauVals holds one row per iteration: the overlap of each objective's
	// final state with its target.
	TauVals [][]complex128

	// GuessControls are the initial controls sampled on Tlist.
	GuessControls [][]float64

	// OptimizedControls are the final optimized controls converted back to
	// samples on Tlist. Set when the run finishes.
	OptimizedControls [][]float64

	// AllPulses retains each iteration's pulses when requested.
	AllPulses [][][]float64

	// FinalStates are the forward-propagated states of the latest iteration.
	FinalStates []quantum.State

	// Objectives are the optimized state-transfer problems.
	Objectives []objective.Objective
}

// New returns an empty result for the given time grid, stamped with a fresh
// run ID and start time.
func New(tlist []float64) *Result {
	r := &Result{
		RunID: uuid.NewString(),
		Start: time.Now(),
		Tlist: make([]float64, len(tlist)),
	}
	copy(r.Tlist, tlist)
	return r
}

// Record appends the bookkeeping of one finished iteration.
func (r *Result) Record(iteration, seconds int, info float64, taus []complex128) {
	r.Iters = append(r.Iters, iteration)
	r.IterSeconds = append(r.IterSeconds, seconds)
	r.InfoVals = append(r.InfoVals, info)
	r.TauVals = append(r.TauVals, taus)
}

// Iterations returns the number of recorded iterations, including the guess
// propagation at index 0.
func (r *Result) Iterations() int { return len(r.Iters) }

// LastTau returns the most recent row of final-state overlaps, or nil before
// the first iteration completes.
func (r *Result) LastTau() []complex128 {
	if len(r.TauVals) == 0 {
		return nil
	}
	return r.TauVals[len(r.TauVals)-1]
}

// LastInfo returns the most recent info value, or NaN before the first
// iteration completes.
func (r *Result) LastInfo() float64 {
	if len(r.InfoVals) == 0 {
		return math.NaN()
	}
	return r.InfoVals[len(r.InfoVals)-1]
}

// Elapsed returns the wall-clock duration of the run. Before finalization it
// measures up to the current time.
func (r *Result) Elapsed() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}
