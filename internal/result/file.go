package result

import (
	"encoding/json"
	"math"
	"os"
	"time"
)

// fileResult is the serialized layout of a Result. States and objectives are
// not persisted; complex overlaps are stored as (re, im) pairs and absent
// info values as null.
type fileResult struct {
	RunID             string         `json:"run_id"`
	Start             time.Time      `json:"start"`
	End               time.Time      `json:"end"`
	Tlist             []float64      `json:"tlist"`
	Iters             []int          `json:"iters"`
	IterSeconds       []int          `json:"iter_seconds"`
	InfoVals          []*float64     `json:"info_vals"`
	TauVals           [][][2]float64 `json:"tau_vals"`
	GuessControls     [][]float64    `json:"guess_controls"`
	OptimizedControls [][]float64    `json:"optimized_controls"`
	AllPulses         [][][]float64  `json:"all_pulses,omitempty"`
}

// Save writes the result to path as indented JSON.
func (r *Result) Save(path string) error {
	f := fileResult{
		RunID:             r.RunID,
		Start:             r.Start,
		End:               r.End,
		Tlist:             r.Tlist,
		Iters:             r.Iters,
		IterSeconds:       r.IterSeconds,
		GuessControls:     r.GuessControls,
		OptimizedControls: r.OptimizedControls,
		AllPulses:         r.AllPulses,
	}
	f.InfoVals = make([]*float64, len(r.InfoVals))
	for i, v := range r.InfoVals {
		if !math.IsNaN(v) {
			vv := v
			f.InfoVals[i] = &vv
		}
	}
	f.TauVals = make([][][2]float64, len(r.TauVals))
	for i, row := range r.TauVals {
		f.TauVals[i] = make([][2]float64, len(row))
		for j, tau := range row {
			f.TauVals[i][j] = [2]float64{real(tau), imag(tau)}
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}

// Load reads a result previously written by Save. Final states and
// objectives are not part of the file and stay nil.
func Load(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fileResult
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	r := &Result{
		RunID:             f.RunID,
		Start:             f.Start,
		End:               f.End,
		Tlist:             f.Tlist,
		Iters:             f.Iters,
		IterSeconds:       f.IterSeconds,
		GuessControls:     f.GuessControls,
		OptimizedControls: f.OptimizedControls,
		AllPulses:         f.AllPulses,
	}
	r.InfoVals = make([]float64, len(f.InfoVals))
	for i, v := range f.InfoVals {
		if v == nil {
			r.InfoVals[i] = math.NaN()
		} else {
			r.InfoVals[i] = *v
		}
	}
	r.TauVals = make([][]complex128, len(f.TauVals))
	for i, row := range f.TauVals {
		r.TauVals[i] = make([]complex128, len(row))
		for j, tau := range row {
			r.TauVals[i][j] = complex(tau[0], tau[1])
		}
	}
	return r, nil
}
