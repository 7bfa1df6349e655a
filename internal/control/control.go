// Package control represents the scalar control functions that an
// optimization tunes, and their per-control configuration.
//
// A [Control] is identified by reference, never by value: two controls built
// from numerically identical samples remain distinct optimization variables,
// while the same *Control shared across several objectives is recognized as
// one variable.
package control

import (
	"errors"
	"fmt"

	"github.com/Basilewitsch/krotov/internal/grid"
)

// ErrLengthMismatch indicates a sampled control whose length does not match
// the time grid.
var ErrLengthMismatch = errors.New("control: sample count does not match time grid")

// Func is a continuous scalar control function of time.
type Func func(t float64) float64

// Control is one optimizable control field. The zero value is not usable;
// construct with [NewFunc] or [NewSamples].
type Control struct {
	name    string
	fn      Func
	samples []float64
}

// NewFunc returns a control backed by a continuous function, sampled onto the
// time grid when the optimization starts.
func NewFunc(name string, fn Func) *Control {
	return &Control{name: name, fn: fn}
}

// NewSamples returns a control backed by explicit grid samples. The sample
// count must equal the grid length at discretization time.
func NewSamples(name string, samples []float64) *Control {
	s := make([]float64, len(samples))
	copy(s, samples)
	return &Control{name: name, samples: s}
}

// Name returns the display name of the control.
func (c *Control) Name() string { return c.name }

// Discretize samples the control at every point of the time grid. Controls
// built from explicit samples are validated against the grid length instead
// of resampled.
func (c *Control) Discretize(g *grid.Grid) ([]float64, error) {
	if c.fn != nil {
		out := make([]float64, g.Len())
		for i, t := range g.Points {
			out[i] = c.fn(t)
		}
		return out, nil
	}
	if len(c.samples) != g.Len() {
		return nil, fmt.Errorf("control %q: %d samples for %d grid points: %w",
			c.name, len(c.samples), g.Len(), ErrLengthMismatch)
	}
	out := make([]float64, len(c.samples))
	copy(out, c.samples)
	return out, nil
}
