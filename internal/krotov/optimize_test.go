package krotov_test

import (
	"context"
	"errors"
	"math"
	"math/cmplx"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Basilewitsch/krotov/internal/control"
	"github.com/Basilewitsch/krotov/internal/functional"
	"github.com/Basilewitsch/krotov/internal/grid"
	"github.com/Basilewitsch/krotov/internal/krotov"
	"github.com/Basilewitsch/krotov/internal/objective"
	"github.com/Basilewitsch/krotov/internal/parallel"
	"github.com/Basilewitsch/krotov/internal/pulse"
	"github.com/Basilewitsch/krotov/internal/qops"
	"github.com/Basilewitsch/krotov/internal/quantum"
	"github.com/Basilewitsch/krotov/internal/result"
	"github.com/Basilewitsch/krotov/internal/shapes"
)

var sigmaX = qops.MustMatrix(2, 2, []complex128{0, 1, 1, 0})

// identityProp leaves every state unchanged, so runs are deterministic and
// depend only on the driver's bookkeeping.
var identityProp = quantum.PropagatorFunc(func(op quantum.Operator, s quantum.State, dt float64, collapse []quantum.Operator, backwards bool) (quantum.State, error) {
	return s, nil
})

// targetChi seeds the backward propagation with the plain target states.
func targetChi(finals []quantum.State, objs []objective.Objective, taus [][]complex128) []quantum.State {
	chis := make([]quantum.State, len(objs))
	for k, obj := range objs {
		chis[k] = obj.Target
	}
	return chis
}

// flipProblem is the reference scenario: one spin-flip objective with a
// constant unit guess pulse on a five-point grid from t=0 to t=1.
func flipProblem() (krotov.Problem, *control.Control) {
	g, err := grid.Uniform(0, 1, 5)
	Expect(err).NotTo(HaveOccurred())
	eps := control.NewFunc("eps", func(t float64) float64 { return 1.0 })
	obj := objective.Objective{
		H:       objective.Generator{{Op: sigmaX, Control: eps}},
		Initial: qops.Basis(2, 0),
		Target:  qops.Basis(2, 1),
	}
	return krotov.Problem{
		Objectives:   []objective.Objective{obj},
		PulseOptions: map[*control.Control]control.Options{eps: {LambdaA: 1}},
		Grid:         g,
		Propagator:   identityProp,
		Chi:          targetChi,
		IterStop:     2,
	}, eps
}

// expmProblem is a physically exact spin flip: sigma-x drive under the
// matrix-exponential propagator, optimizing the state-to-state functional.
func expmProblem(points int, lambdaA float64) (krotov.Problem, *control.Control) {
	g, err := grid.Uniform(0, 1, points)
	Expect(err).NotTo(HaveOccurred())
	eps := control.NewFunc("eps", func(t float64) float64 { return 1.0 })
	obj := objective.Objective{
		H:       objective.Generator{{Op: sigmaX, Control: eps}},
		Initial: qops.Basis(2, 0),
		Target:  qops.Basis(2, 1),
	}
	return krotov.Problem{
		Objectives:   []objective.Objective{obj},
		PulseOptions: map[*control.Control]control.Options{eps: {LambdaA: lambdaA}},
		Grid:         g,
		Propagator:   qops.ExpmPropagator{},
		Chi:          functional.ChisSS,
	}, eps
}

var _ = Describe("New", func() {
	It("rejects a problem without objectives", func() {
		p, _ := flipProblem()
		p.Objectives = nil
		_, err := krotov.New(p)
		Expect(err).To(MatchError(ContainSubstring("objective")))
	})

	It("rejects a missing grid, propagator, or chi constructor", func() {
		p, _ := flipProblem()
		p.Grid = nil
		_, err := krotov.New(p)
		Expect(err).To(HaveOccurred())

		p, _ = flipProblem()
		p.Propagator = nil
		_, err = krotov.New(p)
		Expect(err).To(HaveOccurred())

		p, _ = flipProblem()
		p.Chi = nil
		_, err = krotov.New(p)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a control without a pulse-options entry", func() {
		p, _ := flipProblem()
		p.PulseOptions = map[*control.Control]control.Options{}
		_, err := krotov.New(p)
		Expect(errors.Is(err, pulse.ErrMissingOptions)).To(BeTrue())
	})

	It("rejects a non-positive lambda", func() {
		p, eps := flipProblem()
		p.PulseOptions[eps] = control.Options{LambdaA: 0}
		_, err := krotov.New(p)
		Expect(errors.Is(err, pulse.ErrInvalidLambda)).To(BeTrue())
	})

	It("rejects sampled controls that do not match the grid", func() {
		p, _ := flipProblem()
		eps := control.NewSamples("eps", []float64{1, 1, 1}) // grid has 5 points
		p.Objectives[0].H = objective.Generator{{Op: sigmaX, Control: eps}}
		p.PulseOptions = map[*control.Control]control.Options{eps: {LambdaA: 1}}
		_, err := krotov.New(p)
		Expect(errors.Is(err, control.ErrLengthMismatch)).To(BeTrue())
	})

	It("rejects objectives without any control", func() {
		p, _ := flipProblem()
		p.Objectives[0].H = objective.Generator{{Op: sigmaX}}
		_, err := krotov.New(p)
		Expect(err).To(MatchError(ContainSubstring("no controls")))
	})

	It("rejects bad iteration bounds", func() {
		p, _ := flipProblem()
		p.IterStart = -1
		_, err := krotov.New(p)
		Expect(err).To(HaveOccurred())

		p, _ = flipProblem()
		p.IterStart = 4
		p.IterStop = 2
		_, err = krotov.New(p)
		Expect(err).To(HaveOccurred())
	})

	It("exposes the control registry in first-seen order", func() {
		p, eps := flipProblem()
		opt, err := krotov.New(p)
		Expect(err).NotTo(HaveOccurred())
		Expect(opt.Controls()).To(Equal([]*control.Control{eps}))
	})
})

var _ = Describe("Run", func() {
	It("runs to iter stop and records every iteration including the guess", func() {
		p, _ := flipProblem()
		opt, err := krotov.New(p)
		Expect(err).NotTo(HaveOccurred())

		res, err := opt.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Iters).To(Equal([]int{0, 1, 2}))
		Expect(res.IterSeconds).To(HaveLen(3))
		for i := 1; i < len(res.IterSeconds); i++ {
			Expect(res.IterSeconds[i]).To(BeNumerically(">=", res.IterSeconds[i-1]))
		}
		Expect(res.TauVals).To(HaveLen(3))
		Expect(res.RunID).NotTo(BeEmpty())
		Expect(res.End.IsZero()).To(BeFalse())

		// Identity dynamics and a real-valued overlap sum leave the
		// pulses untouched.
		Expect(res.GuessControls[0]).To(Equal([]float64{1, 1, 1, 1, 1}))
		Expect(res.OptimizedControls[0]).To(Equal([]float64{1, 1, 1, 1, 1}))
	})

	It("numbers iterations from iter start while always recording the guess as 0", func() {
		p, _ := flipProblem()
		p.IterStart = 5
		p.IterStop = 7
		opt, err := krotov.New(p)
		Expect(err).NotTo(HaveOccurred())

		res, err := opt.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Iters).To(Equal([]int{0, 6, 7}))
	})

	It("only propagates the guess when iter stop equals iter start", func() {
		p, _ := flipProblem()
		p.IterStart = 3
		p.IterStop = 3
		opt, err := krotov.New(p)
		Expect(err).NotTo(HaveOccurred())

		res, err := opt.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Iters).To(Equal([]int{0}))
		Expect(res.OptimizedControls).To(Equal(res.GuessControls))
	})

	It("improves the state-to-state functional on an exact spin flip", func() {
		p, _ := expmProblem(50, 5)
		p.IterStop = 3
		opt, err := krotov.New(p)
		Expect(err).NotTo(HaveOccurred())

		res, err := opt.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.TauVals).To(HaveLen(4))

		first := functional.JTSS(res.TauVals[0])
		last := functional.JTSS(res.TauVals[len(res.TauVals)-1])
		Expect(last).To(BeNumerically("<", first))
	})

	It("keeps every overlap within the physical bound under unitary propagation", func() {
		p, _ := expmProblem(20, 5)
		// stop after the first optimization iteration
		p.Check = func(r *result.Result) bool { return true }
		opt, err := krotov.New(p)
		Expect(err).NotTo(HaveOccurred())

		res, err := opt.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Iters).To(Equal([]int{0, 1}))
		for _, tau := range res.LastTau() {
			Expect(cmplx.Abs(tau)).To(BeNumerically("<=", 1+1e-8))
		}
	})

	It("leaves the pulses untouched when the update shape vanishes", func() {
		p, eps := expmProblem(20, 1)
		p.PulseOptions[eps] = control.Options{LambdaA: 1, Shape: shapes.Zero}
		p.IterStop = 3
		opt, err := krotov.New(p)
		Expect(err).NotTo(HaveOccurred())

		res, err := opt.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.OptimizedControls[0]).To(Equal(res.GuessControls[0]))
	})

	It("builds each iterate on a fresh copy of the guess pulses", func() {
		p, _ := expmProblem(20, 5)
		p.IterStop = 2
		p.StoreAllPulses = true
		opt, err := krotov.New(p)
		Expect(err).NotTo(HaveOccurred())

		res, err := opt.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		// One pulse snapshot per recorded iteration, the first being the
		// unmodified guess.
		Expect(res.AllPulses).To(HaveLen(3))
		for _, v := range res.AllPulses[0][0] {
			Expect(v).To(Equal(1.0))
		}
		Expect(res.AllPulses[1][0]).NotTo(Equal(res.AllPulses[0][0]))

		// The recorded guess controls still hold the original samples.
		for _, v := range res.GuessControls[0] {
			Expect(v).To(Equal(1.0))
		}
	})

	It("stops early when the convergence check fires", func() {
		p, _ := flipProblem()
		p.IterStop = 50
		p.Check = func(r *result.Result) bool { return r.Iterations() >= 2 }
		opt, err := krotov.New(p)
		Expect(err).NotTo(HaveOccurred())

		res, err := opt.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Iters).To(Equal([]int{0, 1}))
	})

	It("honors cancellation at iteration boundaries and returns the partial result", func() {
		p, _ := flipProblem()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		opt, err := krotov.New(p)
		Expect(err).NotTo(HaveOccurred())

		res, err := opt.Run(ctx)
		Expect(err).To(MatchError(context.Canceled))
		// The guess propagation completed before the first boundary.
		Expect(res.Iters).To(Equal([]int{0}))
		Expect(res.End.IsZero()).To(BeFalse())
	})

	It("aborts on a propagator error, keeping recorded iterations", func() {
		boom := errors.New("diverged")
		p, _ := flipProblem()
		p.Propagator = quantum.PropagatorFunc(func(op quantum.Operator, s quantum.State, dt float64, collapse []quantum.Operator, backwards bool) (quantum.State, error) {
			if backwards {
				return nil, boom
			}
			return s, nil
		})
		opt, err := krotov.New(p)
		Expect(err).NotTo(HaveOccurred())

		res, err := opt.Run(context.Background())
		Expect(errors.Is(err, boom)).To(BeTrue())
		Expect(res.Iters).To(Equal([]int{0}))
	})

	It("rejects collapse operators that depend on a pulse", func() {
		p, eps := flipProblem()
		p.Objectives[0].CollapseOps = []objective.Generator{
			{{Op: qops.MustMatrix(2, 2, []complex128{0, 1, 0, 0}), Control: eps}},
		}
		opt, err := krotov.New(p)
		Expect(err).NotTo(HaveOccurred())

		res, err := opt.Run(context.Background())
		Expect(errors.Is(err, krotov.ErrTimeDependentCollapse)).To(BeTrue())
		Expect(res.Iters).To(Equal([]int{0}))
	})

	It("rejects a pulse that only drives a collapse operator", func() {
		p, _ := flipProblem()
		gamma := control.NewFunc("gamma", func(t float64) float64 { return 0.1 })
		p.Objectives[0].CollapseOps = []objective.Generator{
			{{Op: qops.MustMatrix(2, 2, []complex128{0, 1, 0, 0}), Control: gamma}},
		}
		p.PulseOptions[gamma] = control.Options{LambdaA: 1}
		opt, err := krotov.New(p)
		Expect(err).NotTo(HaveOccurred())

		_, err = opt.Run(context.Background())
		Expect(errors.Is(err, krotov.ErrTimeDependentCollapse)).To(BeTrue())
	})

	It("produces identical results under serial and pooled mappers", func() {
		build := func(mapper parallel.Mapper) *result.Result {
			g, err := grid.Uniform(0, 1, 20)
			Expect(err).NotTo(HaveOccurred())
			eps := control.NewFunc("eps", func(t float64) float64 { return 1.0 })
			h := objective.Generator{{Op: sigmaX, Control: eps}}
			objs := []objective.Objective{
				{H: h, Initial: qops.Basis(2, 0), Target: qops.Basis(2, 1)},
				{H: h, Initial: qops.Basis(2, 1), Target: qops.Basis(2, 0)},
			}
			opt, err := krotov.New(krotov.Problem{
				Objectives:   objs,
				PulseOptions: map[*control.Control]control.Options{eps: {LambdaA: 5}},
				Grid:         g,
				Propagator:   qops.ExpmPropagator{},
				Chi:          functional.ChisSS,
				IterStop:     2,
				Parallel:     mapper,
			})
			Expect(err).NotTo(HaveOccurred())
			res, err := opt.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			return res
		}

		serial := build(parallel.Serial{})
		pooled := build(parallel.Pool{Workers: 2})
		Expect(pooled.TauVals).To(Equal(serial.TauVals))
		Expect(pooled.OptimizedControls).To(Equal(serial.OptimizedControls))
	})
})

var _ = Describe("the info hook", func() {
	It("sees no backward states at iteration 0 and full trajectories later", func() {
		var infos []krotov.Info
		p, _ := flipProblem()
		p.Info = func(info krotov.Info) float64 {
			infos = append(infos, info)
			return float64(info.Iteration)
		}
		opt, err := krotov.New(p)
		Expect(err).NotTo(HaveOccurred())

		res, err := opt.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(infos).To(HaveLen(3))
		Expect(infos[0].BackwardStates).To(BeNil())
		Expect(infos[1].BackwardStates).To(HaveLen(1))
		Expect(infos[1].BackwardStates[0]).To(HaveLen(5))
		for _, info := range infos {
			Expect(info.ForwardStates[0]).To(HaveLen(5))
			Expect(info.TauVals).To(HaveLen(1))
			Expect(info.Stop.Before(info.Start)).To(BeFalse())
		}
		Expect(res.InfoVals).To(Equal([]float64{0, 1, 2}))
	})

	It("records NaN when absent", func() {
		p, _ := flipProblem()
		opt, err := krotov.New(p)
		Expect(err).NotTo(HaveOccurred())

		res, err := opt.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		for _, v := range res.InfoVals {
			Expect(math.IsNaN(v)).To(BeTrue())
		}
	})
})

var _ = Describe("Simulate", func() {
	It("matches the guess propagation of a full run", func() {
		p, _ := expmProblem(20, 5)
		opt, err := krotov.New(p)
		Expect(err).NotTo(HaveOccurred())

		finals, taus, err := opt.Simulate(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(finals).To(HaveLen(1))

		p2, _ := expmProblem(20, 5)
		p2.IterStart = 1
		p2.IterStop = 1
		opt2, err := krotov.New(p2)
		Expect(err).NotTo(HaveOccurred())
		res, err := opt2.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(taus).To(Equal(res.TauVals[0]))
	})

	It("applies the state constraint during forward propagation", func() {
		calls := 0
		p, _ := flipProblem()
		p.Constraint = func(k, timeIndex int, s quantum.State) quantum.State {
			calls++
			return s
		}
		opt, err := krotov.New(p)
		Expect(err).NotTo(HaveOccurred())

		_, _, err = opt.Simulate(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(calls).To(Equal(4)) // one call per interval
	})
})
