package pulse_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Basilewitsch/krotov/internal/control"
	"github.com/Basilewitsch/krotov/internal/grid"
	"github.com/Basilewitsch/krotov/internal/objective"
	"github.com/Basilewitsch/krotov/internal/pulse"
	"github.com/Basilewitsch/krotov/internal/qops"
)

func TestOntoIntervalMidpoints(t *testing.T) {
	g, err := grid.Uniform(0, 3, 4)
	require.NoError(t, err)

	samples := []float64{0.7, -1.3, 2.9, 4.1}
	p := pulse.OntoInterval(samples, g)

	require.Len(t, p, 3)
	assert.Equal(t, 0.7, p[0], "first interval copies the first sample")
	assert.InDelta(t, 0.5*(-1.3+2.9), p[1], 1e-15, "interior midpoint interpolates")
	assert.Equal(t, 4.1, p[2], "last interval copies the last sample")
}

func TestOntoTlist(t *testing.T) {
	p := []float64{1, 3, 5}
	samples := pulse.OntoTlist(p)
	assert.Equal(t, []float64{1, 2, 4, 5}, samples)
}

func TestRoundTripPreservesBoundaries(t *testing.T) {
	g, err := grid.Uniform(0, 1, 6)
	require.NoError(t, err)

	f := control.NewFunc("sin", func(t float64) float64 { return math.Sin(7 * t) })
	samples, err := f.Discretize(g)
	require.NoError(t, err)

	roundTrip := pulse.OntoTlist(pulse.OntoInterval(samples, g))

	require.Len(t, roundTrip, len(samples))
	assert.Equal(t, samples[0], roundTrip[0], "first grid point must survive exactly")
	assert.Equal(t, samples[len(samples)-1], roundTrip[len(roundTrip)-1],
		"last grid point must survive exactly")
}

func TestExtractControlsIdentity(t *testing.T) {
	shared := control.NewFunc("shared", func(t float64) float64 { return 1 })
	twinA := control.NewSamples("twin", []float64{1, 2})
	twinB := control.NewSamples("twin", []float64{1, 2})
	sx := qops.MustMatrix(2, 2, []complex128{0, 1, 1, 0})

	objs := []objective.Objective{
		{H: objective.Generator{
			{Op: qops.Identity(2)},
			{Op: sx, Control: shared},
			{Op: sx, Control: twinA},
		}},
		{H: objective.Generator{
			{Op: qops.Identity(2)},
			{Op: sx, Control: shared},
			{Op: sx, Control: twinB},
		}},
	}

	controls := pulse.ExtractControls(objs)
	require.Len(t, controls, 3, "identical samples must stay distinct controls")
	assert.Same(t, shared, controls[0], "first-seen order")
	assert.Same(t, twinA, controls[1])
	assert.Same(t, twinB, controls[2])
}

func TestControlsMapping(t *testing.T) {
	eps := control.NewFunc("eps", func(t float64) float64 { return 1 })
	sx := qops.MustMatrix(2, 2, []complex128{0, 1, 1, 0})
	sz := qops.MustMatrix(2, 2, []complex128{1, 0, 0, -1})

	obj := objective.Objective{
		H: objective.Generator{
			{Op: qops.Identity(2)},
			{Op: sx, Control: eps},
			{Op: sz, Control: eps},
		},
		CollapseOps: []objective.Generator{
			{{Op: sx}},
		},
	}

	mappings := pulse.ControlsMapping([]objective.Objective{obj}, []*control.Control{eps})

	require.Len(t, mappings, 1)
	m := mappings[0]
	require.Len(t, m, 2, "one Hamiltonian slot plus one collapse slot")
	assert.Equal(t, [][]int{{1, 2}}, m[0], "control drives terms 1 and 2")
	assert.Equal(t, [][]int{{}}, m[1], "collapse slot has no controlled terms")
}

func TestOptionsList(t *testing.T) {
	a := control.NewFunc("a", func(t float64) float64 { return 0 })
	b := control.NewFunc("b", func(t float64) float64 { return 0 })
	controls := []*control.Control{a, b}

	t.Run("missing entry", func(t *testing.T) {
		opts := map[*control.Control]control.Options{a: {LambdaA: 1}}
		_, err := pulse.OptionsList(opts, controls)
		assert.ErrorIs(t, err, pulse.ErrMissingOptions)
	})

	t.Run("non-positive lambda", func(t *testing.T) {
		opts := map[*control.Control]control.Options{
			a: {LambdaA: 1},
			b: {LambdaA: 0},
		}
		_, err := pulse.OptionsList(opts, controls)
		assert.ErrorIs(t, err, pulse.ErrInvalidLambda)
	})

	t.Run("nil shape defaults to one", func(t *testing.T) {
		opts := map[*control.Control]control.Options{
			a: {LambdaA: 1},
			b: {LambdaA: 2},
		}
		list, err := pulse.OptionsList(opts, controls)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, 1.0, list[0].Shape(0.3))
		assert.Equal(t, 2.0, list[1].LambdaA)
	})
}

func TestPlugIn(t *testing.T) {
	eps := control.NewFunc("eps", func(t float64) float64 { return 1 })
	sx := qops.MustMatrix(2, 2, []complex128{0, 1, 1, 0})

	gen := objective.Generator{
		{Op: qops.Identity(2)},
		{Op: sx, Control: eps},
	}
	slotMap := [][]int{{1}}
	pulses := [][]float64{{0.25, -2}}

	h0 := pulse.PlugIn(gen, pulses, slotMap, 0).(*qops.Matrix)
	assert.Equal(t, complex(0.25, 0), h0.At(0, 1))
	assert.Equal(t, complex(1, 0), h0.At(0, 0))

	h1 := pulse.PlugIn(gen, pulses, slotMap, 1).(*qops.Matrix)
	assert.Equal(t, complex(-2, 0), h1.At(1, 0))
}
