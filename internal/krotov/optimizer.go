package krotov

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/Basilewitsch/krotov/internal/objective"
	"github.com/Basilewitsch/krotov/internal/pulse"
	"github.com/Basilewitsch/krotov/internal/quantum"
	"github.com/Basilewitsch/krotov/internal/result"
)

// ErrTimeDependentCollapse reports a collapse operator driven by an
// optimized pulse. The update rule has no derivative for dissipative terms.
var ErrTimeDependentCollapse = errors.New("krotov: time-dependent collapse operators are not supported")

// Run executes the optimization: a guess propagation recorded as iteration 0,
// then Krotov iterations until IterStop or until the convergence check fires.
// Cancellation is honored at iteration boundaries only, never mid-iteration,
// and returns the partial result with the context error. A propagator error
// aborts the run; iterations already recorded remain in the result.
func (o *Optimizer) Run(ctx context.Context) (*result.Result, error) {
	o.logger.Infof("initializing optimization")

	res := result.New(o.grid.Points)
	res.Objectives = o.objectives
	res.GuessControls = o.guessControls

	guess := o.guessPulses

	// Guess propagation, recorded as iteration 0.
	tic := time.Now()
	forward, err := o.forwardAll(guess)
	if err != nil {
		o.finalize(res, guess)
		return res, err
	}
	toc := time.Now()

	finals := lastStates(forward)
	taus := o.overlaps(finals)

	res.FinalStates = finals
	info := o.report(Info{
		Iteration:         0,
		Objectives:        o.objectives,
		AdjointObjectives: o.adjoints,
		ForwardStates:     forward,
		FinalStates:       finals,
		TauVals:           taus,
		Start:             tic,
		Stop:              toc,
	})
	res.Record(0, seconds(tic, toc), info, taus)
	if o.storeAll {
		res.AllPulses = append(res.AllPulses, copyPulses(guess))
	}

	for iteration := o.iterStart + 1; iteration <= o.iterStop; iteration++ {
		select {
		case <-ctx.Done():
			o.finalize(res, guess)
			return res, ctx.Err()
		default:
		}

		o.logger.Infof("started iteration %d", iteration)
		tic = time.Now()

		// Boundary condition for the backward propagation. This is
		// where the functional enters the optimization.
		chis := o.chi(finals, o.objectives, res.TauVals)
		if o.sigma != nil {
			add := o.sigma(finals, o.objectives, iteration)
			for k := range chis {
				chis[k] = chis[k].Add(add[k])
			}
		}
		norms := make([]float64, len(chis))
		for k, chi := range chis {
			norms[k] = chi.Norm()
			chis[k] = chi.Scale(complex(1/norms[k], 0))
		}

		backward, err := o.backwardAll(chis, guess)
		if err != nil {
			o.finalize(res, guess)
			return res, err
		}

		optimized, forward, err := o.updateLoop(guess, backward, norms)
		if err != nil {
			o.finalize(res, guess)
			return res, err
		}

		finals = lastStates(forward)
		taus = o.overlaps(finals)
		toc = time.Now()

		res.FinalStates = finals
		info = o.report(Info{
			Iteration:         iteration,
			Objectives:        o.objectives,
			AdjointObjectives: o.adjoints,
			BackwardStates:    backward,
			ForwardStates:     forward,
			FinalStates:       finals,
			TauVals:           taus,
			Start:             tic,
			Stop:              toc,
		})
		res.Record(iteration, seconds(tic, toc), info, taus)
		if o.storeAll {
			res.AllPulses = append(res.AllPulses, copyPulses(optimized))
		}

		// The optimized pulses become the next iteration's guess.
		guess = optimized
		o.logger.Infof("finished iteration %d", iteration)

		if o.check != nil && o.check(res) {
			o.logger.Infof("convergence reached after iteration %d", iteration)
			break
		}
	}

	o.finalize(res, guess)
	return res, nil
}

// updateLoop runs the interleaved pulse update and forward propagation of
// one iteration: at each interval midpoint, strictly in increasing time
// order, the update for every pulse is computed from the forward/backward
// state overlaps and applied to a fresh copy of the guess pulses, then every
// objective is propagated across that single interval with the just-updated
// values. The order is load-bearing: the forward state entering midpoint n+1
// depends on the update applied at midpoint n.
func (o *Optimizer) updateLoop(guess [][]float64, backward [][]quantum.State, chiNorms []float64) ([][]float64, [][]quantum.State, error) {
	optimized := copyPulses(guess)

	forward := make([][]quantum.State, len(o.objectives))
	for k := range forward {
		forward[k] = o.storage(o.grid.Len())
		forward[k][0] = o.objectives[k].Initial
	}

	// The derivative operators carry no pulse values; build them once per
	// sweep and reuse them at every midpoint.
	mus := make([][]quantum.Operator, len(o.objectives))
	for k, obj := range o.objectives {
		mus[k] = make([]quantum.Operator, len(optimized))
		for p := range optimized {
			mu, err := o.muDerivative(obj, o.mappings[k], p)
			if err != nil {
				return nil, nil, err
			}
			mus[k][p] = mu
		}
	}

	for n := 0; n < o.grid.Intervals(); n++ {
		for p := range optimized {
			var acc complex128
			for k := range o.objectives {
				mu := mus[k][p]
				if mu == nil {
					continue
				}
				chi := backward[k][n]
				psi := forward[k][n]
				acc += chi.Overlap(mu.Apply(psi)) * complex(chiNorms[k], 0)
			}
			s := o.options[p].Shape(o.grid.Midpoint(n))
			optimized[p][n] += s / o.options[p].LambdaA * imag(acc)
		}

		if err := o.mapper.Map(len(o.objectives), func(k int) error {
			next, err := o.stepForward(k, forward[k][n], optimized, n)
			if err != nil {
				return err
			}
			forward[k][n+1] = next
			return nil
		}); err != nil {
			return nil, nil, err
		}
	}
	return optimized, forward, nil
}

// muDerivative builds ∂H/∂ε for one objective and one pulse: the sum of the
// Hamiltonian terms the pulse drives, or nil when it drives none. A collapse
// operator driven by the pulse is unsupported.
func (o *Optimizer) muDerivative(obj objective.Objective, m pulse.Mapping, p int) (quantum.Operator, error) {
	for ic := range obj.CollapseOps {
		if len(m[ic+1][p]) != 0 {
			return nil, errors.Wrapf(ErrTimeDependentCollapse,
				"collapse operator %d depends on control %q", ic, o.controls[p].Name())
		}
	}
	var mu quantum.Operator
	for _, it := range m[0][p] {
		if mu == nil {
			mu = obj.H[it].Op
		} else {
			mu = mu.Add(obj.H[it].Op)
		}
	}
	return mu, nil
}

// finalize converts the pulses of the last completed iteration back to grid
// samples for reporting and stamps the end time.
func (o *Optimizer) finalize(res *result.Result, pulses [][]float64) {
	res.OptimizedControls = make([][]float64, len(pulses))
	for i, p := range pulses {
		res.OptimizedControls[i] = pulse.OntoTlist(p)
	}
	res.End = time.Now()
}

func (o *Optimizer) report(info Info) float64 {
	if o.info == nil {
		return math.NaN()
	}
	return o.info(info)
}

func (o *Optimizer) overlaps(finals []quantum.State) []complex128 {
	taus := make([]complex128, len(finals))
	for k, s := range finals {
		taus[k] = s.Overlap(o.objectives[k].Target)
	}
	return taus
}

func lastStates(trajectories [][]quantum.State) []quantum.State {
	finals := make([]quantum.State, len(trajectories))
	for k, states := range trajectories {
		finals[k] = states[len(states)-1]
	}
	return finals
}

func copyPulses(pulses [][]float64) [][]float64 {
	out := make([][]float64, len(pulses))
	for i, p := range pulses {
		out[i] = append([]float64(nil), p...)
	}
	return out
}

func seconds(tic, toc time.Time) int {
	return int(toc.Sub(tic).Seconds())
}
