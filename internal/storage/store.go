// Package storage persists optimization runs: one directory per run with
// the run metadata, the guess and optimized controls as CSV, and the full
// recorded result as JSON.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math/cmplx"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Basilewitsch/krotov/internal/metrics"
	"github.com/Basilewitsch/krotov/internal/result"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Timestamp  time.Time          `json:"timestamp"`
	Functional string             `json:"functional"`
	Propagator string             `json:"propagator"`
	LambdaA    float64            `json:"lambda_a"`
	Iterations int                `json:"iterations"`
	FinalJT    float64            `json:"final_jt"`
	FinalTaus  []float64          `json:"final_taus"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes one finished run under the store's base directory, keyed by
// the result's run ID. FinalTaus records the magnitude of each objective's
// final overlap.
func (s *Store) Save(model, functional, propagator string, lambdaA, finalJT float64, res *result.Result) (string, error) {
	runID := res.RunID
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	taus := res.LastTau()
	absTaus := make([]float64, len(taus))
	for i, tau := range taus {
		absTaus[i] = cmplx.Abs(tau)
	}

	meta := RunMetadata{
		ID:         runID,
		Model:      model,
		Timestamp:  time.Now(),
		Functional: functional,
		Propagator: propagator,
		LambdaA:    lambdaA,
		Iterations: res.Iterations(),
		FinalJT:    finalJT,
		FinalTaus:  absTaus,
		Metrics:    metrics.ForControls(res.Tlist, res.OptimizedControls),
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := s.writeControls(runDir, res); err != nil {
		return "", err
	}

	if err := res.Save(filepath.Join(runDir, "result.json")); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) writeControls(runDir string, res *result.Result) error {
	csvPath := filepath.Join(runDir, "controls.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"time"}
	for i := range res.GuessControls {
		header = append(header, fmt.Sprintf("guess_%d", i))
	}
	for i := range res.OptimizedControls {
		header = append(header, fmt.Sprintf("opt_%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for n, t := range res.Tlist {
		row := []string{strconv.FormatFloat(t, 'f', 6, 64)}
		for _, samples := range res.GuessControls {
			row = append(row, strconv.FormatFloat(samples[n], 'f', 6, 64))
		}
		for _, samples := range res.OptimizedControls {
			row = append(row, strconv.FormatFloat(samples[n], 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadResult reads back the full recorded result of a run.
func (s *Store) LoadResult(runID string) (*result.Result, error) {
	return result.Load(filepath.Join(s.baseDir, runID, "result.json"))
}

// LoadControls reads back the control columns of a run: the time grid and
// one guess and one optimized sample row per control.
func (s *Store) LoadControls(runID string) (times []float64, guess, opt [][]float64, err error) {
	csvPath := filepath.Join(s.baseDir, runID, "controls.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, [][]float64{}, [][]float64{}, nil
	}

	// header: time, guess_0..guess_{k-1}, opt_0..opt_{k-1}
	numControls := (len(records[0]) - 1) / 2
	guess = make([][]float64, numControls)
	opt = make([][]float64, numControls)

	for _, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, nil, err
		}
		times = append(times, t)
		for i := 0; i < numControls; i++ {
			g, err := strconv.ParseFloat(record[1+i], 64)
			if err != nil {
				return nil, nil, nil, err
			}
			o, err := strconv.ParseFloat(record[1+numControls+i], 64)
			if err != nil {
				return nil, nil, nil, err
			}
			guess[i] = append(guess[i], g)
			opt[i] = append(opt[i], o)
		}
	}
	return times, guess, opt, nil
}

type exportData struct {
	Meta   RunMetadata     `json:"meta"`
	Result json.RawMessage `json:"result"`
}

// Export writes a stored run as one indented JSON document bundling its
// metadata and recorded result.
func (s *Store) Export(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(filepath.Join(s.baseDir, runID, "result.json"))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exportData{Meta: *meta, Result: raw})
}
