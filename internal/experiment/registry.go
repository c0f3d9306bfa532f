package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/axonguide/internal/adapt"
	"github.com/san-kum/axonguide/internal/metrics"
	"github.com/san-kum/axonguide/internal/sim"
	"github.com/san-kum/axonguide/internal/substrate"
)

type Registry struct {
	strategies map[string]func() adapt.Strategy
	metrics    map[string]func() sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		strategies: make(map[string]func() adapt.Strategy),
		metrics:    make(map[string]func() sim.Metric),
	}

	r.strategies["none"] = func() adapt.Strategy { return adapt.None{} }
	r.strategies["desensitization"] = func() adapt.Strategy { return adapt.Desensitization{} }

	r.metrics["mean_potential"] = func() sim.Metric { return metrics.NewMeanPotential() }
	r.metrics["final_potential"] = func() sim.Metric { return metrics.NewFinalPotential() }
	r.metrics["mean_displacement"] = func() sim.Metric { return metrics.NewMeanDisplacement() }
	r.metrics["topographic_order"] = func() sim.Metric { return metrics.NewTopographicOrder() }

	return r
}

// GetSubstrate builds a padded substrate of the named pattern.
func (r *Registry) GetSubstrate(name string, p substrate.Params) (*substrate.Grid, error) {
	return substrate.New(name, p)
}

func (r *Registry) GetStrategy(name string) (adapt.Strategy, error) {
	fn, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown adaptation strategy: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetMetric(name string) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListSubstrates() []string { return substrate.Names() }
func (r *Registry) ListStrategies() []string { return sortedKeys(r.strategies) }
func (r *Registry) ListMetrics() []string    { return sortedKeys(r.metrics) }

// DefaultMetrics returns a fresh instance of every registered metric.
func (r *Registry) DefaultMetrics() []sim.Metric {
	out := make([]sim.Metric, 0, len(r.metrics))
	for _, name := range r.ListMetrics() {
		out = append(out, r.metrics[name]())
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
