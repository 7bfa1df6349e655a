package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultT0       = 0.0
	DefaultT1       = 5.0
	DefaultPoints   = 200
	DefaultLambdaA  = 5.0
	DefaultIterStop = 20
	DefaultRise     = 0.5
)

type Config struct {
	Model          string             `yaml:"model"`
	Functional     string             `yaml:"functional"`
	Propagator     string             `yaml:"propagator"`
	T0             float64            `yaml:"t0"`
	T1             float64            `yaml:"t1"`
	Points         int                `yaml:"points"`
	LambdaA        float64            `yaml:"lambda_a"`
	Shape          string             `yaml:"shape"`
	ShapeRise      float64            `yaml:"shape_rise"`
	IterStop       int                `yaml:"iter_stop"`
	StopJT         float64            `yaml:"stop_jt"`
	StopDelta      float64            `yaml:"stop_delta"`
	Workers        int                `yaml:"workers"`
	StoreAllPulses bool               `yaml:"store_all_pulses"`
	Params         map[string]float64 `yaml:"params"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "spinflip",
		Functional: "ss",
		Propagator: "expm",
		T0:         DefaultT0,
		T1:         DefaultT1,
		Points:     DefaultPoints,
		LambdaA:    DefaultLambdaA,
		Shape:      "blackman",
		ShapeRise:  DefaultRise,
		IterStop:   DefaultIterStop,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
