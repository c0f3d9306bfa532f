// Package experiment wires a config.Config into a runnable simulation:
// substrate, cone population, adaptation strategy, metrics and logger.
package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/axonguide/internal/adapt"
	"github.com/san-kum/axonguide/internal/config"
	"github.com/san-kum/axonguide/internal/cone"
	"github.com/san-kum/axonguide/internal/logging"
	"github.com/san-kum/axonguide/internal/potential"
	"github.com/san-kum/axonguide/internal/sim"
	"github.com/san-kum/axonguide/internal/substrate"
)

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	substrate *substrate.Grid
	simulator *sim.Simulation
	logger    *slog.Logger
}

// SimConfig maps the file-level config onto the simulation parameters.
func SimConfig(cfg *config.Config, strategy adapt.Strategy) sim.Config {
	return sim.Config{
		NumSteps:  cfg.Movement.NumSteps,
		StepSize:  cfg.Movement.StepSize,
		XStepP:    cfg.Movement.XStepP,
		YStepP:    cfg.Movement.YStepP,
		Sigma:     cfg.Movement.Sigma,
		Force:     cfg.Movement.Force,
		Steepness: cfg.Schedule.Steepness,
		Shift:     cfg.Schedule.Shift,
		Height:    cfg.Schedule.Height,
		Field: potential.Field{
			Forward: cfg.Signals.Forward,
			Reverse: cfg.Signals.Reverse,
			FF:      cfg.Signals.FF,
			FT:      cfg.Signals.FT,
		},
		Adaptation: cfg.Adaptation.Enabled,
		Strategy:   strategy,
		AdaptParams: adapt.Params{
			Mu:            cfg.Adaptation.Mu,
			Lambda:        cfg.Adaptation.Lambda,
			HistoryLength: cfg.Adaptation.HistoryLength,
		},
		Seed:    cfg.Seed,
		Workers: cfg.Workers,
	}
}

// Build validates cfg and assembles a fresh simulation. The substrate is
// padded by the cone size on every side. A nil logger discards output.
func Build(cfg *config.Config, logger *slog.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}
	reg := NewRegistry()

	sub, err := reg.GetSubstrate(cfg.Substrate.Type, substrate.Params{
		Rows:   cfg.Grid.Rows,
		Cols:   cfg.Grid.Cols,
		Offset: cfg.Cones.Size,
		First:  cfg.Substrate.First,
		Second: cfg.Substrate.Second,
	})
	if err != nil {
		return nil, err
	}

	var strategy adapt.Strategy
	if cfg.Adaptation.Enabled {
		strategy, err = reg.GetStrategy(cfg.Adaptation.Strategy)
		if err != nil {
			return nil, err
		}
	}

	cones, err := cone.NewPopulation(cfg.Cones.Count, cfg.Cones.Size, cfg.Grid.Rows)
	if err != nil {
		return nil, err
	}

	s, err := sim.New(sub, cones, SimConfig(cfg, strategy))
	if err != nil {
		return nil, fmt.Errorf("experiment: %w", err)
	}
	s.SetLogger(logger)
	for _, m := range reg.DefaultMetrics() {
		s.AddMetric(m)
	}

	logger.Debug("experiment built",
		"substrate", cfg.Substrate.Type,
		"rows", sub.Rows(),
		"cols", sub.Cols(),
		"cones", len(cones),
	)

	return &Experiment{
		cfg:       cfg,
		registry:  reg,
		substrate: sub,
		simulator: s,
		logger:    logger,
	}, nil
}

// BuildDefault builds the experiment described by config.DefaultConfig.
func BuildDefault(logger *slog.Logger) (*Experiment, error) {
	return Build(config.DefaultConfig(), logger)
}

func (e *Experiment) Run() (*sim.Result, error) {
	return e.simulator.Run()
}

func (e *Experiment) Config() *config.Config      { return e.cfg }
func (e *Experiment) Substrate() *substrate.Grid  { return e.substrate }
func (e *Experiment) Simulation() *sim.Simulation { return e.simulator }

// Factory returns a sim.Factory that rebuilds cfg with a different seed.
func Factory(cfg *config.Config, logger *slog.Logger) sim.Factory {
	return func(seed int64) (*sim.Simulation, error) {
		c := cfg.Clone()
		c.Seed = seed
		e, err := Build(c, logger)
		if err != nil {
			return nil, err
		}
		return e.simulator, nil
	}
}

// RunEnsemble runs n copies of cfg with seeds cfg.Seed, cfg.Seed+1, ...
func RunEnsemble(ctx context.Context, cfg *config.Config, n, workers int, logger *slog.Logger) ([]*sim.Result, error) {
	return sim.NewEnsemble(Factory(cfg, logger), n, cfg.Seed, workers).Run(ctx)
}
