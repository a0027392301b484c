package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/waddington/internal/dynamo"
	"github.com/san-kum/waddington/internal/integrators"
	"github.com/san-kum/waddington/internal/metrics"
	"github.com/san-kum/waddington/internal/physics"
	"github.com/san-kum/waddington/internal/sim"
)

// Registry resolves the named building blocks of a run.
type Registry struct {
	integrators map[string]func(noise float64) sim.IntegratorFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func(float64) sim.IntegratorFactory),
	}

	em := func(noise float64) sim.IntegratorFactory { return integrators.Factory(noise) }
	r.integrators["euler-maruyama"] = em
	r.integrators["em"] = em

	return r
}

func (r *Registry) GetIntegrator(name string, noise float64) (sim.IntegratorFactory, error) {
	if name == "" {
		name = "euler-maruyama"
	}
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown integrator %q", dynamo.ErrInvalidParameter, name)
	}
	return fn(noise), nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) GetLandscape(p dynamo.Params, quartic float64, mode dynamo.Mode) (*physics.Landscape, error) {
	return physics.NewLandscape(p, quartic, mode)
}

// DefaultMetrics are the streaming metrics attached to every run.
func (r *Registry) DefaultMetrics(l *physics.Landscape, transient int) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewMeanDeviation(transient),
		metrics.NewMaxExcursion(),
		metrics.NewComfortZone(),
		metrics.NewSpikeZone(),
		metrics.NewMeanEnergy(l),
		metrics.NewEnergyRise(l),
	}
}
