// Package grid provides the shared time grid of an optimization: the
// propagation time points and the interval midpoints where piecewise-constant
// pulses are evaluated.
package grid

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ErrInvalidGrid indicates a time grid with too few or non-increasing points.
var ErrInvalidGrid = errors.New("grid: time points must be strictly increasing, at least two")

// Grid is a discretized time axis. Points are the propagation times;
// Midpoints hold the center of every interval between adjacent points.
// Both slices are read-only after construction.
type Grid struct {
	Points    []float64
	Midpoints []float64
}

// New builds a grid from at least two strictly increasing time points.
func New(points []float64) (*Grid, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: got %d points", ErrInvalidGrid, len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i] <= points[i-1] {
			return nil, fmt.Errorf("%w: point %d (%g) does not increase past %g",
				ErrInvalidGrid, i, points[i], points[i-1])
		}
	}
	g := &Grid{Points: make([]float64, len(points))}
	copy(g.Points, points)
	g.Midpoints = make([]float64, len(points)-1)
	for i := range g.Midpoints {
		g.Midpoints[i] = 0.5 * (points[i] + points[i+1])
	}
	return g, nil
}

// Uniform builds an equally spaced grid of n points from t0 to t1 inclusive.
func Uniform(t0, t1 float64, n int) (*Grid, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d points", ErrInvalidGrid, n)
	}
	return New(floats.Span(make([]float64, n), t0, t1))
}

// Len returns the number of grid points.
func (g *Grid) Len() int { return len(g.Points) }

// Intervals returns the number of intervals between adjacent points.
func (g *Grid) Intervals() int { return len(g.Points) - 1 }

// Dt returns the width of interval i.
func (g *Grid) Dt(i int) float64 { return g.Points[i+1] - g.Points[i] }

// Midpoint returns the center time of interval i.
func (g *Grid) Midpoint(i int) float64 { return g.Midpoints[i] }
