package control

import "github.com/Basilewitsch/krotov/internal/shapes"

// Options configures how one control is updated during optimization. Every
// control discovered in the objectives must have exactly one Options entry.
type Options struct {
	// LambdaA divides the pulse update; larger values mean smaller,
	// more conservative steps. Must be positive.
	LambdaA float64

	// Shape weights the update over time. A shape that vanishes at the
	// boundaries of the time grid keeps the boundary values of the guess
	// pulse intact. Nil means a constant weight of 1.
	Shape shapes.Shape
}
