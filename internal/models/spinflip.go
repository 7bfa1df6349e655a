package models

import (
	"github.com/Basilewitsch/krotov/internal/control"
	"github.com/Basilewitsch/krotov/internal/grid"
	"github.com/Basilewitsch/krotov/internal/objective"
	"github.com/Basilewitsch/krotov/internal/qops"
	"github.com/Basilewitsch/krotov/internal/shapes"
)

// SpinFlip is a two-level system with a sigma-z drift and an optimizable
// sigma-x drive, driven from the ground state to the excited state.
type SpinFlip struct {
	Omega float64
	Amp   float64
}

func NewSpinFlip() *SpinFlip {
	return &SpinFlip{
		Omega: 1.0,
		Amp:   1.0,
	}
}

func (m *SpinFlip) Setup(g *grid.Grid) *Setup {
	t0 := g.Points[0]
	t1 := g.Points[g.Len()-1]

	env := shapes.Blackman(t0, t1)
	eps := control.NewFunc("eps", func(t float64) float64 {
		return m.Amp * env(t)
	})

	omega := complex(m.Omega, 0)
	drift := qops.MustMatrix(2, 2, []complex128{
		-0.5 * omega, 0,
		0, 0.5 * omega,
	})
	drive := qops.MustMatrix(2, 2, []complex128{
		0, 1,
		1, 0,
	})

	obj := objective.Objective{
		H: objective.Generator{
			{Op: drift},
			{Op: drive, Control: eps},
		},
		Initial: qops.Basis(2, 0),
		Target:  qops.Basis(2, 1),
	}
	return &Setup{
		Objectives: []objective.Objective{obj},
		Controls:   []*control.Control{eps},
	}
}

func (m *SpinFlip) GetParams() map[string]float64 {
	return map[string]float64{
		"omega": m.Omega,
		"amp":   m.Amp,
	}
}

func (m *SpinFlip) SetParam(name string, value float64) error {
	switch name {
	case "omega":
		m.Omega = value
	case "amp":
		m.Amp = value
	default:
		return unknownParam(name)
	}
	return nil
}
