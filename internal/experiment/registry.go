package experiment

import (
	"fmt"

	"github.com/Basilewitsch/krotov/internal/functional"
	"github.com/Basilewitsch/krotov/internal/krotov"
	"github.com/Basilewitsch/krotov/internal/models"
	"github.com/Basilewitsch/krotov/internal/qops"
	"github.com/Basilewitsch/krotov/internal/quantum"
	"github.com/Basilewitsch/krotov/internal/shapes"
)

// Functional pairs a chi constructor with the scalar figure of merit it
// optimizes.
type Functional struct {
	Chi krotov.ChiConstructor
	JT  func(taus []complex128) float64
}

type Registry struct {
	models      map[string]func() models.Model
	shapes      map[string]func(t0, t1, rise float64) shapes.Shape
	functionals map[string]Functional
	propagators map[string]func() quantum.Propagator
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func() models.Model),
		shapes:      make(map[string]func(t0, t1, rise float64) shapes.Shape),
		functionals: make(map[string]Functional),
		propagators: make(map[string]func() quantum.Propagator),
	}

	r.models["spinflip"] = func() models.Model { return models.NewSpinFlip() }
	r.models["stirap"] = func() models.Model { return models.NewStirap() }

	r.shapes["one"] = func(t0, t1, rise float64) shapes.Shape { return shapes.One }
	r.shapes["zero"] = func(t0, t1, rise float64) shapes.Shape { return shapes.Zero }
	r.shapes["box"] = func(t0, t1, rise float64) shapes.Shape { return shapes.Box(t0, t1) }
	r.shapes["blackman"] = func(t0, t1, rise float64) shapes.Shape { return shapes.Blackman(t0, t1) }
	r.shapes["flattop"] = func(t0, t1, rise float64) shapes.Shape { return shapes.FlatTop(t0, t1, rise) }

	r.functionals["re"] = Functional{Chi: functional.ChisRe, JT: functional.JTRe}
	r.functionals["ss"] = Functional{Chi: functional.ChisSS, JT: functional.JTSS}
	r.functionals["sm"] = Functional{Chi: functional.ChisSM, JT: functional.JTSM}

	r.propagators["expm"] = func() quantum.Propagator { return qops.ExpmPropagator{} }
	r.propagators["rk4"] = func() quantum.Propagator { return qops.RK4Propagator{} }

	return r
}

func (r *Registry) GetModel(name string) (models.Model, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetShape(name string, t0, t1, rise float64) (shapes.Shape, error) {
	fn, ok := r.shapes[name]
	if !ok {
		return nil, fmt.Errorf("unknown shape: %s", name)
	}
	return fn(t0, t1, rise), nil
}

func (r *Registry) GetFunctional(name string) (Functional, error) {
	fn, ok := r.functionals[name]
	if !ok {
		return Functional{}, fmt.Errorf("unknown functional: %s", name)
	}
	return fn, nil
}

func (r *Registry) GetPropagator(name string) (quantum.Propagator, error) {
	fn, ok := r.propagators[name]
	if !ok {
		return nil, fmt.Errorf("unknown propagator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	return names
}
