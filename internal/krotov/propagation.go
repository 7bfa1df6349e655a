package krotov

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Basilewitsch/krotov/internal/objective"
	"github.com/Basilewitsch/krotov/internal/pulse"
	"github.com/Basilewitsch/krotov/internal/quantum"
)

// operators builds the Hamiltonian and collapse operators of one objective
// at one grid interval, with the interval's pulse values substituted into
// every control-dependent term.
func (o *Optimizer) operators(obj objective.Objective, m pulse.Mapping, pulses [][]float64, timeIndex int) (quantum.Operator, []quantum.Operator) {
	h := pulse.PlugIn(obj.H, pulses, m[0], timeIndex)
	var collapse []quantum.Operator
	if len(obj.CollapseOps) > 0 {
		collapse = make([]quantum.Operator, len(obj.CollapseOps))
		for ic, cop := range obj.CollapseOps {
			collapse[ic] = pulse.PlugIn(cop, pulses, m[ic+1], timeIndex)
		}
	}
	return h, collapse
}

// forwardAll propagates every objective from its initial state across the
// full grid, returning the stored trajectories.
func (o *Optimizer) forwardAll(pulses [][]float64) ([][]quantum.State, error) {
	out := make([][]quantum.State, len(o.objectives))
	err := o.mapper.Map(len(o.objectives), func(k int) error {
		o.logger.Debugf("forward propagation of objective %d started", k)
		states, err := o.forwardProp(k, pulses, true)
		if err != nil {
			return err
		}
		out[k] = states
		o.logger.Debugf("forward propagation of objective %d finished", k)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// forwardProp propagates one objective from its initial state across the
// full grid, in increasing time order. With storeAll the whole trajectory is
// returned; otherwise only the final state, as a single-element slice.
func (o *Optimizer) forwardProp(k int, pulses [][]float64, storeAll bool) ([]quantum.State, error) {
	obj := o.objectives[k]
	m := o.mappings[k]
	state := obj.Initial

	var states []quantum.State
	if storeAll {
		states = o.storage(o.grid.Len())
		states[0] = state
	}
	for n := 0; n < o.grid.Intervals(); n++ {
		h, collapse := o.operators(obj, m, pulses, n)
		next, err := o.prop.Propagate(h, state, o.grid.Dt(n), collapse, false)
		if err != nil {
			return nil, errors.Wrapf(err, "forward propagation of objective %d at interval %d", k, n)
		}
		if o.constraint != nil {
			next = o.constraint(k, n, next)
		}
		state = next
		if storeAll {
			states[n+1] = state
		}
	}
	if storeAll {
		return states, nil
	}
	return []quantum.State{state}, nil
}

// backwardAll propagates every normalized costate backward across the full
// grid under the adjoint objectives, returning the stored trajectories
// indexed by grid point.
func (o *Optimizer) backwardAll(chis []quantum.State, pulses [][]float64) ([][]quantum.State, error) {
	out := make([][]quantum.State, len(o.adjoints))
	err := o.mapper.Map(len(o.adjoints), func(k int) error {
		o.logger.Debugf("backward propagation of costate %d started", k)
		states, err := o.backwardProp(k, chis[k], pulses)
		if err != nil {
			return err
		}
		out[k] = states
		o.logger.Debugf("backward propagation of costate %d finished", k)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// backwardProp propagates one costate from the final grid point down to the
// first, stepping the intervals in decreasing order under the adjoint
// objective. Controls are assumed real-valued: pulse values are not
// conjugated for the backward pass.
func (o *Optimizer) backwardProp(k int, chi quantum.State, pulses [][]float64) ([]quantum.State, error) {
	obj := o.adjoints[k]
	m := o.mappings[k]
	states := o.storage(o.grid.Len())
	state := chi
	states[o.grid.Len()-1] = state
	for n := o.grid.Intervals() - 1; n >= 0; n-- {
		h, collapse := o.operators(obj, m, pulses, n)
		next, err := o.prop.Propagate(h, state, o.grid.Dt(n), collapse, true)
		if err != nil {
			return nil, errors.Wrapf(err, "backward propagation of costate %d at interval %d", k, n)
		}
		state = next
		states[n] = state
	}
	return states, nil
}

// stepForward advances one objective's state across exactly one interval.
func (o *Optimizer) stepForward(k int, state quantum.State, pulses [][]float64, timeIndex int) (quantum.State, error) {
	obj := o.objectives[k]
	h, collapse := o.operators(obj, o.mappings[k], pulses, timeIndex)
	next, err := o.prop.Propagate(h, state, o.grid.Dt(timeIndex), collapse, false)
	if err != nil {
		return nil, errors.Wrapf(err, "forward step of objective %d at interval %d", k, timeIndex)
	}
	if o.constraint != nil {
		next = o.constraint(k, timeIndex, next)
	}
	return next, nil
}

// Simulate forward-propagates every objective under the unmodified guess
// controls, without optimizing. It returns the final states and their target
// overlaps, e.g. for a before/after fidelity comparison.
func (o *Optimizer) Simulate(ctx context.Context) ([]quantum.State, []complex128, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	finals := make([]quantum.State, len(o.objectives))
	err := o.mapper.Map(len(o.objectives), func(k int) error {
		states, err := o.forwardProp(k, o.guessPulses, false)
		if err != nil {
			return err
		}
		finals[k] = states[len(states)-1]
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return finals, o.overlaps(finals), nil
}
