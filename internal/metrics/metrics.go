// Package metrics computes summary quantities of optimized control fields.
package metrics

import (
	"fmt"
	"math"
)

// Fluence returns the integral of the squared control amplitude over the time
// grid, evaluated with the trapezoidal rule. times and control must have the
// same length.
func Fluence(times, control []float64) float64 {
	if len(times) < 2 || len(control) != len(times) {
		return 0
	}
	var sum float64
	for i := 1; i < len(times); i++ {
		dt := times[i] - times[i-1]
		sum += 0.5 * (control[i-1]*control[i-1] + control[i]*control[i]) * dt
	}
	return sum
}

// Peak returns the largest absolute amplitude of the control field.
func Peak(control []float64) float64 {
	var peak float64
	for _, v := range control {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}

// ForControls computes all metrics for a set of control fields sampled on a
// shared time grid. Keys are fluence_<i> and peak_<i> with i the control
// index.
func ForControls(times []float64, controls [][]float64) map[string]float64 {
	out := make(map[string]float64, 2*len(controls))
	for i, c := range controls {
		out[fmt.Sprintf("fluence_%d", i)] = Fluence(times, c)
		out[fmt.Sprintf("peak_%d", i)] = Peak(c)
	}
	return out
}
