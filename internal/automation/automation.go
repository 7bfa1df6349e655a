// Package automation runs scripted sequences of optimizations.
package automation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Basilewitsch/krotov/internal/config"
	"github.com/Basilewitsch/krotov/internal/experiment"
	"github.com/Basilewitsch/krotov/internal/storage"
)

// Scenario defines a scripted optimization sequence.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is a single optimization in a scenario. Besides its name it carries
// the full problem configuration inline, so a scenario file reads like a list
// of config files.
type Step struct {
	Name   string        `yaml:"name"`
	Config config.Config `yaml:",inline"`
}

// UnmarshalYAML fills defaults before decoding so scenario files only list
// the fields they change.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	type raw Step
	tmp := raw{Config: *config.DefaultConfig()}
	if err := value.Decode(&tmp); err != nil {
		return err
	}
	*s = Step(tmp)
	return nil
}

// StepResult summarizes one executed scenario step.
type StepResult struct {
	Name       string
	RunID      string
	Iterations int
	JT         float64
}

// LoadScenario reads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// RunScenario executes all steps in order and saves every run to st. It
// stops at the first failing step, returning the results collected so far.
func RunScenario(ctx context.Context, scenario *Scenario, reg *experiment.Registry, st *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = step.Config.Model
		}
		fmt.Printf("running step %d/%d: %s\n", i+1, len(scenario.Steps), name)

		exp, err := experiment.New(step.Config, reg)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		res, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		jt := exp.JT(res.LastTau())
		runID, err := st.Save(step.Config.Model, step.Config.Functional, step.Config.Propagator, step.Config.LambdaA, jt, res)
		if err != nil {
			return results, fmt.Errorf("step %d save: %w", i+1, err)
		}

		results = append(results, StepResult{
			Name:       name,
			RunID:      runID,
			Iterations: res.Iterations(),
			JT:         jt,
		})
	}

	return results, nil
}
