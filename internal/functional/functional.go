// Package functional provides the standard state-transfer functionals: the
// boundary costates that seed backward propagation, and the matching J_T
// values evaluated on final-state overlaps.
//
// Overlaps follow the engine's convention τ_k = ⟨ψ_k(T)|φ_k⟩ with φ_k the
// target state, so the costate coefficients below carry the conjugate of the
// stored τ where the functional calls for ⟨φ_k|ψ_k(T)⟩.
package functional

import (
	"math/cmplx"

	"github.com/Basilewitsch/krotov/internal/objective"
	"github.com/Basilewitsch/krotov/internal/quantum"
)

// ChisRe constructs the costates for J_T,re (real-part fidelity):
// χ_k = φ_k / 2N.
func ChisRe(finalStates []quantum.State, objectives []objective.Objective, tauVals [][]complex128) []quantum.State {
	n := len(objectives)
	chis := make([]quantum.State, n)
	for k, obj := range objectives {
		chis[k] = obj.Target.Scale(complex(1/(2*float64(n)), 0))
	}
	return chis
}

// ChisSS constructs the costates for J_T,ss (state-to-state fidelity):
// χ_k = τ̄_k · φ_k / N, with τ taken from the latest iteration.
func ChisSS(finalStates []quantum.State, objectives []objective.Objective, tauVals [][]complex128) []quantum.State {
	n := len(objectives)
	taus := tauVals[len(tauVals)-1]
	chis := make([]quantum.State, n)
	for k, obj := range objectives {
		chis[k] = obj.Target.Scale(cmplx.Conj(taus[k]) / complex(float64(n), 0))
	}
	return chis
}

// ChisSM constructs the costates for J_T,sm (square-modulus of the averaged
// overlap): χ_k = (Σ_l τ̄_l) · φ_k / N².
func ChisSM(finalStates []quantum.State, objectives []objective.Objective, tauVals [][]complex128) []quantum.State {
	n := len(objectives)
	taus := tauVals[len(tauVals)-1]
	var sum complex128
	for _, tau := range taus {
		sum += cmplx.Conj(tau)
	}
	chis := make([]quantum.State, n)
	for k, obj := range objectives {
		chis[k] = obj.Target.Scale(sum / complex(float64(n*n), 0))
	}
	return chis
}

// JTRe is 1 - (1/N)·Σ Re τ_k. Zero for a perfect phase-sensitive transfer.
func JTRe(taus []complex128) float64 {
	sum := 0.0
	for _, tau := range taus {
		sum += real(tau)
	}
	return 1 - sum/float64(len(taus))
}

// JTSS is 1 - (1/N)·Σ |τ_k|². Zero when every objective reaches its target
// up to a global phase.
func JTSS(taus []complex128) float64 {
	sum := 0.0
	for _, tau := range taus {
		a := cmplx.Abs(tau)
		sum += a * a
	}
	return 1 - sum/float64(len(taus))
}

// JTSM is 1 - |(1/N)·Σ τ_k|². Sensitive to relative phases between the
// objectives.
func JTSM(taus []complex128) float64 {
	var sum complex128
	for _, tau := range taus {
		sum += tau
	}
	a := cmplx.Abs(sum) / float64(len(taus))
	return 1 - a*a
}
