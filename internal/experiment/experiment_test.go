package experiment

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/axonguide/internal/config"
	"github.com/san-kum/axonguide/internal/substrate"
)

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Grid = config.GridConfig{Rows: 20, Cols: 40}
	cfg.Cones = config.ConeConfig{Count: 4, Size: 2}
	cfg.Movement.NumSteps = 25
	return cfg
}

func TestRegistry_Strategies(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.ListStrategies() {
		s, err := r.GetStrategy(name)
		if err != nil {
			t.Fatalf("GetStrategy(%q): %v", name, err)
		}
		if s.Name() != name {
			t.Errorf("strategy %q reports name %q", name, s.Name())
		}
	}

	_, err := r.GetStrategy("sensitization")
	if err == nil || !strings.Contains(err.Error(), "unknown adaptation strategy: sensitization") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRegistry_Metrics(t *testing.T) {
	r := NewRegistry()
	ms := r.DefaultMetrics()
	if len(ms) != len(r.ListMetrics()) {
		t.Fatalf("DefaultMetrics returned %d metrics for %d names", len(ms), len(r.ListMetrics()))
	}
	if _, err := r.GetMetric("energy"); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestRegistry_Substrates(t *testing.T) {
	r := NewRegistry()
	if diff := cmp.Diff(substrate.Names(), r.ListSubstrates()); diff != "" {
		t.Errorf("substrate names differ:\n%s", diff)
	}
}

func TestBuild(t *testing.T) {
	cfg := smallConfig()
	e, err := Build(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	sub := e.Substrate()
	if sub.Rows() != 24 || sub.Cols() != 44 {
		t.Errorf("padded substrate is %dx%d, want 24x44", sub.Rows(), sub.Cols())
	}

	res, err := e.Run()
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Cones) != 4 || res.StepsTaken != 25 {
		t.Errorf("result has %d cones and %d steps", len(res.Cones), res.StepsTaken)
	}
	for _, name := range NewRegistry().ListMetrics() {
		if _, ok := res.Metrics[name]; !ok {
			t.Errorf("metric %q missing from result", name)
		}
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		target error
	}{
		{"unknown substrate", func(c *config.Config) { c.Substrate.Type = "spiral" }, substrate.ErrUnknownPattern},
		{"invalid config", func(c *config.Config) { c.Cones.Count = 0 }, config.ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			tt.mutate(cfg)
			if _, err := Build(cfg, nil); !errors.Is(err, tt.target) {
				t.Errorf("Build() error = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestBuild_UnknownStrategy(t *testing.T) {
	cfg := smallConfig()
	cfg.Adaptation.Enabled = true
	cfg.Adaptation.Strategy = "sensitization"
	if _, err := Build(cfg, nil); err == nil {
		t.Error("expected error for unknown strategy")
	}

	// disabled adaptation ignores the strategy name
	cfg.Adaptation.Enabled = false
	if _, err := Build(cfg, nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBuildDefault(t *testing.T) {
	e, err := BuildDefault(nil)
	if err != nil {
		t.Fatal(err)
	}
	if e.Config().Substrate.Type != config.DefaultSubstrate {
		t.Errorf("substrate = %s", e.Config().Substrate.Type)
	}
	if got := len(e.Simulation().Cones()); got != config.DefaultCones {
		t.Errorf("cones = %d, want %d", got, config.DefaultCones)
	}
}

func TestRunEnsemble(t *testing.T) {
	cfg := smallConfig()
	cfg.Seed = 11
	results, err := RunEnsemble(t.Context(), cfg, 3, 3, nil)
	if err != nil {
		t.Fatal(err)
	}

	single := cfg.Clone()
	single.Seed = 13
	e, err := Build(single, nil)
	if err != nil {
		t.Fatal(err)
	}
	want, err := e.Run()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, results[2]); diff != "" {
		t.Errorf("ensemble member 2 differs from seed 13 run:\n%s", diff)
	}
	if cfg.Seed != 11 {
		t.Error("ensemble mutated the base config")
	}
}
