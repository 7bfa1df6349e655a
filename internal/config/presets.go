package config

var Presets = map[string]map[string]*Config{
	"spinflip": {
		"fast": {
			Model: "spinflip", Functional: "ss", Propagator: "expm",
			T0: 0, T1: 3, Points: 150, LambdaA: 5, Shape: "blackman",
			IterStop: 10,
		},
		"precise": {
			Model: "spinflip", Functional: "ss", Propagator: "expm",
			T0: 0, T1: 5, Points: 500, LambdaA: 5, Shape: "blackman",
			IterStop: 500, StopJT: 1e-4, StopDelta: 1e-7,
		},
		"phase_sensitive": {
			Model: "spinflip", Functional: "re", Propagator: "expm",
			T0: 0, T1: 5, Points: 200, LambdaA: 5, Shape: "blackman",
			IterStop: 50, StopJT: 1e-3,
		},
	},
	"stirap": {
		"counterintuitive": {
			Model: "stirap", Functional: "ss", Propagator: "expm",
			T0: 0, T1: 5, Points: 500, LambdaA: 10, Shape: "flattop",
			ShapeRise: 0.5, IterStop: 100, StopJT: 1e-3,
		},
		"detuned": {
			Model: "stirap", Functional: "ss", Propagator: "expm",
			T0: 0, T1: 5, Points: 500, LambdaA: 10, Shape: "flattop",
			ShapeRise: 0.5, IterStop: 200, StopJT: 1e-3,
			Params: map[string]float64{"delta": 2.0},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
