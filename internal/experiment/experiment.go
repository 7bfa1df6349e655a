// Package experiment assembles optimization problems from run
// configurations. A Registry resolves models, shapes, functionals and
// propagators by name; an Experiment wires one config into a krotov
// optimizer and runs it.
package experiment

import (
	"context"

	"github.com/Basilewitsch/krotov/internal/config"
	"github.com/Basilewitsch/krotov/internal/control"
	"github.com/Basilewitsch/krotov/internal/convergence"
	"github.com/Basilewitsch/krotov/internal/grid"
	"github.com/Basilewitsch/krotov/internal/krotov"
	"github.com/Basilewitsch/krotov/internal/models"
	"github.com/Basilewitsch/krotov/internal/parallel"
	"github.com/Basilewitsch/krotov/internal/quantum"
	"github.com/Basilewitsch/krotov/internal/result"
	"github.com/Basilewitsch/krotov/internal/shapes"
)

type Experiment struct {
	cfg        config.Config
	model      models.Model
	functional Functional
	propagator quantum.Propagator
	shape      shapes.Shape
	grid       *grid.Grid
	logger     *krotov.Logger
	observer   func(iteration int, jt float64, taus []complex128)
}

// New resolves the named collaborators of cfg against the registry and
// applies the config's model parameters.
func New(cfg config.Config, reg *Registry) (*Experiment, error) {
	model, err := reg.GetModel(cfg.Model)
	if err != nil {
		return nil, err
	}
	for name, value := range cfg.Params {
		if err := model.SetParam(name, value); err != nil {
			return nil, err
		}
	}

	fn, err := reg.GetFunctional(cfg.Functional)
	if err != nil {
		return nil, err
	}

	propagator, err := reg.GetPropagator(cfg.Propagator)
	if err != nil {
		return nil, err
	}

	shape, err := reg.GetShape(cfg.Shape, cfg.T0, cfg.T1, cfg.ShapeRise)
	if err != nil {
		return nil, err
	}

	g, err := grid.Uniform(cfg.T0, cfg.T1, cfg.Points)
	if err != nil {
		return nil, err
	}

	return &Experiment{
		cfg:        cfg,
		model:      model,
		functional: fn,
		propagator: propagator,
		shape:      shape,
		grid:       g,
	}, nil
}

// SetLogger routes the optimizer's progress output.
func (e *Experiment) SetLogger(l *krotov.Logger) {
	e.logger = l
}

// SetObserver registers a callback invoked after every iteration with the
// iteration number, the figure of merit and the final overlaps. The callback
// runs on the optimization goroutine and must not block.
func (e *Experiment) SetObserver(fn func(iteration int, jt float64, taus []complex128)) {
	e.observer = fn
}

// Run optimizes the configured problem to completion.
func (e *Experiment) Run(ctx context.Context) (*result.Result, error) {
	opt, err := e.optimizer()
	if err != nil {
		return nil, err
	}
	return opt.Run(ctx)
}

// Simulate propagates the guess controls without optimizing, returning the
// final states and their overlaps with the targets.
func (e *Experiment) Simulate(ctx context.Context) ([]quantum.State, []complex128, error) {
	opt, err := e.optimizer()
	if err != nil {
		return nil, nil, err
	}
	return opt.Simulate(ctx)
}

// JT evaluates the experiment's figure of merit on a set of final overlaps,
// e.g. a result's LastTau.
func (e *Experiment) JT(taus []complex128) float64 {
	return e.functional.JT(taus)
}

func (e *Experiment) optimizer() (*krotov.Optimizer, error) {
	setup := e.model.Setup(e.grid)

	options := make(map[*control.Control]control.Options, len(setup.Controls))
	for _, c := range setup.Controls {
		options[c] = control.Options{LambdaA: e.cfg.LambdaA, Shape: e.shape}
	}

	var mapper parallel.Mapper
	if e.cfg.Workers > 1 {
		mapper = parallel.Pool{Workers: e.cfg.Workers}
	}

	jt := e.functional.JT
	observer := e.observer
	problem := krotov.Problem{
		Objectives:   setup.Objectives,
		PulseOptions: options,
		Grid:         e.grid,
		Propagator:   e.propagator,
		Chi:          e.functional.Chi,
		IterStop:     e.cfg.IterStop,
		Check:        e.check(),
		Info: func(info krotov.Info) float64 {
			v := jt(info.TauVals)
			if observer != nil {
				observer(info.Iteration, v, info.TauVals)
			}
			return v
		},
		Parallel:       mapper,
		Logger:         e.logger,
		StoreAllPulses: e.cfg.StoreAllPulses,
	}

	return krotov.New(problem)
}

func (e *Experiment) check() func(r *result.Result) bool {
	series := convergence.Tau(e.functional.JT)

	var checks []convergence.Check
	if e.cfg.StopJT > 0 {
		checks = append(checks, convergence.ValueBelow(e.cfg.StopJT, series))
	}
	if e.cfg.StopDelta > 0 {
		checks = append(checks, convergence.DeltaBelow(e.cfg.StopDelta, series))
	}

	if len(checks) == 0 {
		return nil
	}
	return convergence.Or(checks...)
}
