// Package models provides ready-made quantum control systems.
//
// Each model builds the objectives and guess controls of one physical
// system on a given time grid:
//
//   - [SpinFlip]: two-level population inversion under a sigma-x drive
//   - [Stirap]: three-level ladder transfer with pump and Stokes pulses
//
// Models implement [Model] for runtime parameter adjustment, so a scan can
// vary e.g. a detuning without rebuilding the experiment.
package models

import (
	"fmt"

	"github.com/Basilewitsch/krotov/internal/control"
	"github.com/Basilewitsch/krotov/internal/grid"
	"github.com/Basilewitsch/krotov/internal/objective"
)

// Setup bundles the objectives of a model with its control registry, in the
// order the controls should be optimized.
type Setup struct {
	Objectives []objective.Objective
	Controls   []*control.Control
}

// Model is a configurable quantum control system.
type Model interface {
	// Setup builds the model's objectives and guess controls on the grid.
	Setup(g *grid.Grid) *Setup

	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

func unknownParam(name string) error {
	return fmt.Errorf("unknown param: %s", name)
}
