// Package shapes provides update envelopes for pulse optimization. An
// envelope weights the pulse update over time; vanishing at the boundaries of
// the optimization window keeps the updated pulse from acquiring switch-on or
// switch-off artifacts.
package shapes

import "math"

// Shape is a time-dependent update weight, typically in [0, 1].
type Shape func(t float64) float64

// One is the constant envelope 1.
func One(t float64) float64 { return 1 }

// Zero is the constant envelope 0. It freezes a pulse entirely.
func Zero(t float64) float64 { return 0 }

// Box is 1 inside [t0, t1] and 0 outside.
func Box(t0, t1 float64) Shape {
	return func(t float64) float64 {
		if t < t0 || t > t1 {
			return 0
		}
		return 1
	}
}

// Blackman is a Blackman window over [t0, t1]: zero at both edges with
// near-vanishing slope, peaking at 1 in the center. Zero outside the window.
func Blackman(t0, t1 float64) Shape {
	const a = 0.16
	width := t1 - t0
	return func(t float64) float64 {
		if t < t0 || t > t1 {
			return 0
		}
		x := (t - t0) / width
		return 0.5 * (1 - a - math.Cos(2*math.Pi*x) + a*math.Cos(4*math.Pi*x))
	}
}

// FlatTop rises from 0 to 1 over rise at the start of [t0, t1], stays at 1,
// and falls back to 0 over rise at the end. Zero outside the window.
func FlatTop(t0, t1, rise float64) Shape {
	return func(t float64) float64 {
		if t < t0 || t > t1 {
			return 0
		}
		switch {
		case t < t0+rise:
			f := math.Sin(math.Pi * (t - t0) / (2 * rise))
			return f * f
		case t > t1-rise:
			f := math.Sin(math.Pi * (t1 - t) / (2 * rise))
			return f * f
		default:
			return 1
		}
	}
}
