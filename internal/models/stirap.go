package models

import (
	"github.com/Basilewitsch/krotov/internal/control"
	"github.com/Basilewitsch/krotov/internal/grid"
	"github.com/Basilewitsch/krotov/internal/objective"
	"github.com/Basilewitsch/krotov/internal/qops"
	"github.com/Basilewitsch/krotov/internal/shapes"
)

// Stirap is a three-level ladder driven by separately optimizable pump and
// Stokes pulses, transferring population from the lowest to the highest
// level through a detuned intermediate state. The guess pulses overlap in
// the counterintuitive order, Stokes leading the pump.
type Stirap struct {
	Delta float64
	Amp   float64
}

func NewStirap() *Stirap {
	return &Stirap{
		Delta: 1.0,
		Amp:   3.0,
	}
}

func (m *Stirap) Setup(g *grid.Grid) *Setup {
	t0 := g.Points[0]
	t1 := g.Points[g.Len()-1]
	span := t1 - t0

	stokesEnv := shapes.Blackman(t0, t0+0.75*span)
	pumpEnv := shapes.Blackman(t0+0.25*span, t1)
	stokes := control.NewFunc("stokes", func(t float64) float64 {
		return m.Amp * stokesEnv(t)
	})
	pump := control.NewFunc("pump", func(t float64) float64 {
		return m.Amp * pumpEnv(t)
	})

	drift := qops.MustMatrix(3, 3, []complex128{
		0, 0, 0,
		0, complex(m.Delta, 0), 0,
		0, 0, 0,
	})
	pumpOp := qops.MustMatrix(3, 3, []complex128{
		0, 0.5, 0,
		0.5, 0, 0,
		0, 0, 0,
	})
	stokesOp := qops.MustMatrix(3, 3, []complex128{
		0, 0, 0,
		0, 0, 0.5,
		0, 0.5, 0,
	})

	obj := objective.Objective{
		H: objective.Generator{
			{Op: drift},
			{Op: pumpOp, Control: pump},
			{Op: stokesOp, Control: stokes},
		},
		Initial: qops.Basis(3, 0),
		Target:  qops.Basis(3, 2),
	}
	return &Setup{
		Objectives: []objective.Objective{obj},
		Controls:   []*control.Control{pump, stokes},
	}
}

func (m *Stirap) GetParams() map[string]float64 {
	return map[string]float64{
		"delta": m.Delta,
		"amp":   m.Amp,
	}
}

func (m *Stirap) SetParam(name string, value float64) error {
	switch name {
	case "delta":
		m.Delta = value
	case "amp":
		m.Amp = value
	default:
		return unknownParam(name)
	}
	return nil
}
