package krotov

import (
	"time"

	"github.com/pkg/errors"

	"github.com/Basilewitsch/krotov/internal/control"
	"github.com/Basilewitsch/krotov/internal/grid"
	"github.com/Basilewitsch/krotov/internal/objective"
	"github.com/Basilewitsch/krotov/internal/parallel"
	"github.com/Basilewitsch/krotov/internal/pulse"
	"github.com/Basilewitsch/krotov/internal/quantum"
	"github.com/Basilewitsch/krotov/internal/result"
)

// DefaultIterStop caps the iteration count when Problem.IterStop is zero.
const DefaultIterStop = 5000

// ChiConstructor builds the boundary costates for the backward propagation
// from the latest final states and the accumulated overlap history. This is
// where the cost functional enters the optimization.
type ChiConstructor func(finalStates []quantum.State, objectives []objective.Objective, tauVals [][]complex128) []quantum.State

// Sigma supplies a second-order contribution, added to the boundary costates
// before normalization and backward propagation. Without it the first-order
// method runs unmodified.
type Sigma func(finalStates []quantum.State, objectives []objective.Objective, iteration int) []quantum.State

// StateConstraint adjusts a just-propagated state during forward propagation,
// allowing trajectory-dependent penalties. It is called per objective per
// interval; the returned state continues the trajectory.
type StateConstraint func(objective, timeIndex int, s quantum.State) quantum.State

// Info is the per-iteration snapshot handed to the info hook.
type Info struct {
	Iteration         int
	Objectives        []objective.Objective
	AdjointObjectives []objective.Objective

	// BackwardStates holds this iteration's costate trajectories, indexed
	// by objective and grid point. Nil at iteration 0, before any backward
	// pass has run.
	BackwardStates [][]quantum.State

	// ForwardStates holds the trajectories propagated under the
	// iteration's updated pulses (the guess pulses at iteration 0).
	ForwardStates [][]quantum.State

	FinalStates []quantum.State

	// TauVals are the per-objective overlaps of the final states with
	// their targets for this iteration.
	TauVals []complex128

	Start, Stop time.Time
}

// InfoHook observes each finished iteration. The returned value, typically
// an evaluated functional J_T, is recorded in the result; NaN is recorded
// when no hook is set.
type InfoHook func(info Info) float64

// Problem describes one optimization: what to optimize, over which time
// grid, and under which propagation and update policies. All collaborators
// are fixed for the duration of a run.
type Problem struct {
	// Objectives are the simultaneous state-transfer problems. Controls
	// shared between objectives (by identity) are optimized as one.
	Objectives []objective.Objective

	// PulseOptions configures the update per control, keyed by identity.
	// Every control referenced by the objectives needs exactly one entry.
	PulseOptions map[*control.Control]control.Options

	// Grid is the shared propagation time grid.
	Grid *grid.Grid

	// Propagator advances states across single grid intervals.
	Propagator quantum.Propagator

	// Chi constructs the backward boundary costates, once per iteration.
	Chi ChiConstructor

	// Sigma optionally adds a second-order term to the costates.
	Sigma Sigma

	// IterStart is the formal number of the first optimization iteration.
	// The guess propagation is always recorded as iteration 0.
	IterStart int

	// IterStop ends the optimization unconditionally, converged or not.
	// Zero means DefaultIterStop.
	IterStop int

	// Check, when set, may stop the optimization early after any
	// completed iteration, given the result so far.
	Check func(r *result.Result) bool

	// Constraint, when set, is applied per objective per interval during
	// forward propagation.
	Constraint StateConstraint

	// Info, when set, observes each iteration; its return value lands in
	// the result's info values.
	Info InfoHook

	// Storage allocates trajectory containers; defaults to plain slices.
	Storage func(n int) []quantum.State

	// Parallel distributes propagation across objectives; defaults to
	// running serially.
	Parallel parallel.Mapper

	// Logger receives progress output; nil is silent.
	Logger *Logger

	// StoreAllPulses retains the pulse snapshot of every iteration in the
	// result, not just the final one.
	StoreAllPulses bool
}

// Optimizer executes Krotov iterations for one validated problem.
type Optimizer struct {
	objectives []objective.Objective
	adjoints   []objective.Objective
	grid       *grid.Grid
	prop       quantum.Propagator
	chi        ChiConstructor
	sigma      Sigma
	iterStart  int
	iterStop   int
	check      func(r *result.Result) bool
	constraint StateConstraint
	info       InfoHook
	storage    func(n int) []quantum.State
	mapper     parallel.Mapper
	logger     *Logger
	storeAll   bool

	controls      []*control.Control
	options       []control.Options
	guessControls [][]float64
	guessPulses   [][]float64
	mappings      []pulse.Mapping
}

// New validates the problem and derives the optimization state: adjoint
// objectives, the control registry with its options, discretized guess
// controls and pulses, and the pulse-to-operator mappings. Every
// misconfiguration is fatal here, before any propagation runs.
func New(p Problem) (*Optimizer, error) {
	iterStop := p.IterStop
	if iterStop == 0 {
		iterStop = DefaultIterStop
	}

	switch {
	case len(p.Objectives) == 0:
		return nil, errors.New("krotov: at least one objective is required")
	case p.Grid == nil:
		return nil, errors.New("krotov: time grid is required")
	case p.Propagator == nil:
		return nil, errors.New("krotov: propagator is required")
	case p.Chi == nil:
		return nil, errors.New("krotov: chi constructor is required")
	case p.IterStart < 0:
		return nil, errors.Errorf("krotov: iter start must not be negative, got %d", p.IterStart)
	case iterStop < p.IterStart:
		return nil, errors.Errorf("krotov: iter stop %d below iter start %d", iterStop, p.IterStart)
	}

	controls := pulse.ExtractControls(p.Objectives)
	if len(controls) == 0 {
		return nil, errors.New("krotov: objectives reference no controls")
	}
	options, err := pulse.OptionsList(p.PulseOptions, controls)
	if err != nil {
		return nil, err
	}

	guessControls := make([][]float64, len(controls))
	guessPulses := make([][]float64, len(controls))
	for i, c := range controls {
		samples, err := c.Discretize(p.Grid)
		if err != nil {
			return nil, err
		}
		guessControls[i] = samples
		guessPulses[i] = pulse.OntoInterval(samples, p.Grid)
	}

	adjoints := make([]objective.Objective, len(p.Objectives))
	for i, obj := range p.Objectives {
		adjoints[i] = obj.Adjoint()
	}

	o := &Optimizer{
		objectives:    p.Objectives,
		adjoints:      adjoints,
		grid:          p.Grid,
		prop:          p.Propagator,
		chi:           p.Chi,
		sigma:         p.Sigma,
		iterStart:     p.IterStart,
		iterStop:      iterStop,
		check:         p.Check,
		constraint:    p.Constraint,
		info:          p.Info,
		storage:       p.Storage,
		mapper:        p.Parallel,
		logger:        p.Logger,
		storeAll:      p.StoreAllPulses,
		controls:      controls,
		options:       options,
		guessControls: guessControls,
		guessPulses:   guessPulses,
		mappings:      pulse.ControlsMapping(p.Objectives, controls),
	}
	if o.storage == nil {
		o.storage = func(n int) []quantum.State { return make([]quantum.State, n) }
	}
	if o.mapper == nil {
		o.mapper = parallel.Serial{}
	}
	return o, nil
}

// Controls returns the registry of distinct controls found across the
// objectives, in first-seen order. Pulse and control rows everywhere in the
// package and in results are aligned with this order.
func (o *Optimizer) Controls() []*control.Control {
	return o.controls
}
