// Package convergence provides stopping predicates evaluated on the growing
// optimization record after each iteration.
package convergence

import (
	"math"

	"github.com/Basilewitsch/krotov/internal/result"
)

// Check decides whether an optimization should stop after the iteration that
// just completed. A nil Check never stops early.
type Check func(r *result.Result) bool

// Series extracts a per-iteration value series from the record.
type Series func(r *result.Result) []float64

// InfoValues is the series of recorded info-hook values.
func InfoValues(r *result.Result) []float64 {
	return r.InfoVals
}

// Tau derives a series by applying jt to each recorded tau row, e.g.
// Tau(functional.JTSS) for the state-to-state error per iteration.
func Tau(jt func(taus []complex128) float64) Series {
	return func(r *result.Result) []float64 {
		vals := make([]float64, len(r.TauVals))
		for i, taus := range r.TauVals {
			vals[i] = jt(taus)
		}
		return vals
	}
}

// ValueBelow stops once the latest series value drops below limit. NaN
// values never trigger a stop.
func ValueBelow(limit float64, series Series) Check {
	return func(r *result.Result) bool {
		vals := series(r)
		if len(vals) == 0 {
			return false
		}
		v := vals[len(vals)-1]
		return !math.IsNaN(v) && v < limit
	}
}

// DeltaBelow stops once the improvement between the two latest series values
// falls below limit. It needs at least two recorded values.
func DeltaBelow(limit float64, series Series) Check {
	return func(r *result.Result) bool {
		vals := series(r)
		if len(vals) < 2 {
			return false
		}
		prev, cur := vals[len(vals)-2], vals[len(vals)-1]
		if math.IsNaN(prev) || math.IsNaN(cur) {
			return false
		}
		return math.Abs(prev-cur) < limit
	}
}

// Or combines checks; the optimization stops when any of them fires.
func Or(checks ...Check) Check {
	return func(r *result.Result) bool {
		for _, c := range checks {
			if c != nil && c(r) {
				return true
			}
		}
		return false
	}
}
