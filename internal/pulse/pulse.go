// Package pulse converts between the structural views of an optimization's
// controls: continuous functions, samples on the time grid, and
// piecewise-constant pulses on the grid intervals. It also derives the
// read-only mapping tables that tie each pulse to the operator terms it
// drives.
package pulse

import (
	"errors"
	"fmt"

	"github.com/Basilewitsch/krotov/internal/control"
	"github.com/Basilewitsch/krotov/internal/grid"
	"github.com/Basilewitsch/krotov/internal/objective"
	"github.com/Basilewitsch/krotov/internal/quantum"
	"github.com/Basilewitsch/krotov/internal/shapes"
)

// ErrMissingOptions indicates a control without a pulse-options entry.
var ErrMissingOptions = errors.New("pulse: no options for control")

// ErrInvalidLambda indicates a non-positive step-size weight.
var ErrInvalidLambda = errors.New("pulse: lambda_a must be positive")

// ExtractControls returns the distinct controls referenced across all
// objectives' Hamiltonian and collapse-operator terms, in first-seen order.
// Controls are deduplicated by identity, never by value.
func ExtractControls(objectives []objective.Objective) []*control.Control {
	var out []*control.Control
	seen := make(map[*control.Control]bool)
	collect := func(g objective.Generator) {
		for _, c := range g.Controls() {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	for _, obj := range objectives {
		collect(obj.H)
		for _, c := range obj.CollapseOps {
			collect(c)
		}
	}
	return out
}

// Mapping records, for one objective, which generator terms each control
// drives. The first index is the operator slot (0 for the Hamiltonian,
// 1..k for the k-th collapse operator), the second the control's position in
// the registry; the value lists term positions within that slot. Mappings are
// built once and read-only thereafter.
type Mapping [][][]int

// ControlsMapping builds the pulse-to-operator mapping for every objective,
// aligned with the given control registry.
func ControlsMapping(objectives []objective.Objective, controls []*control.Control) []Mapping {
	out := make([]Mapping, len(objectives))
	for i, obj := range objectives {
		m := make(Mapping, 1+len(obj.CollapseOps))
		m[0] = slotMapping(obj.H, controls)
		for ic, c := range obj.CollapseOps {
			m[ic+1] = slotMapping(c, controls)
		}
		out[i] = m
	}
	return out
}

func slotMapping(g objective.Generator, controls []*control.Control) [][]int {
	slot := make([][]int, len(controls))
	for ic, c := range controls {
		terms := []int{}
		for it, term := range g {
			if term.Control == c {
				terms = append(terms, it)
			}
		}
		slot[ic] = terms
	}
	return slot
}

// OntoInterval converts grid samples of a control into the piecewise-constant
// pulse on the grid intervals. Interior midpoints take the linear
// interpolation of the adjacent samples; the first and last interval copy the
// nearest boundary sample unmodified, so that boundary values survive the
// conversion exactly.
func OntoInterval(samples []float64, g *grid.Grid) []float64 {
	p := make([]float64, g.Intervals())
	p[0] = samples[0]
	for i := 1; i < len(p)-1; i++ {
		p[i] = 0.5 * (samples[i] + samples[i+1])
	}
	p[len(p)-1] = samples[len(samples)-1]
	return p
}

// OntoTlist converts a pulse on grid intervals back to samples on the grid
// points. The conversion has no unique inverse; interior points take the
// average of the adjacent interval values while the boundary points copy
// their neighboring interval exactly. Intended for reporting final controls,
// not for further computation.
func OntoTlist(pulse []float64) []float64 {
	out := make([]float64, len(pulse)+1)
	out[0] = pulse[0]
	for i := 1; i < len(out)-1; i++ {
		out[i] = 0.5 * (pulse[i-1] + pulse[i])
	}
	out[len(out)-1] = pulse[len(pulse)-1]
	return out
}

// OptionsList re-keys per-control options into a positional list aligned with
// the control registry. Every control must have an entry with a positive
// LambdaA; a nil Shape defaults to a constant envelope of 1.
func OptionsList(options map[*control.Control]control.Options, controls []*control.Control) ([]control.Options, error) {
	out := make([]control.Options, len(controls))
	for i, c := range controls {
		opt, ok := options[c]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingOptions, c.Name())
		}
		if opt.LambdaA <= 0 {
			return nil, fmt.Errorf("%w: control %q has lambda_a %g",
				ErrInvalidLambda, c.Name(), opt.LambdaA)
		}
		if opt.Shape == nil {
			opt.Shape = shapes.One
		}
		out[i] = opt
	}
	return out, nil
}

// PlugIn builds the operator of one generator at one grid interval, with the
// interval's pulse values substituted into every control-dependent term.
// slotMap is the generator's slot of the objective's mapping; pulses holds
// one value row per control, indexed by interval.
func PlugIn(g objective.Generator, pulses [][]float64, slotMap [][]int, timeIndex int) quantum.Operator {
	values := make(map[int]float64, len(g))
	for p, terms := range slotMap {
		for _, it := range terms {
			values[it] = pulses[p][timeIndex]
		}
	}
	var op quantum.Operator
	for it, term := range g {
		t := term.Op
		if term.Control != nil {
			t = t.Scale(complex(values[it], 0))
		}
		if op == nil {
			op = t
		} else {
			op = op.Add(t)
		}
	}
	return op
}
