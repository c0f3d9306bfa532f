package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/axonguide/internal/adapt"
	"github.com/san-kum/axonguide/internal/cone"
	"github.com/san-kum/axonguide/internal/geom"
	"github.com/san-kum/axonguide/internal/logging"
	"github.com/san-kum/axonguide/internal/potential"
	"github.com/san-kum/axonguide/internal/substrate"
)

type Simulation struct {
	sub       substrate.Substrate
	cones     []*cone.GrowthCone
	cfg       Config
	metrics   []Metric
	observers []Observer
	logger    *slog.Logger
	phase     Phase

	rngs    []*rand.Rand
	states  []*adapt.State
	pending []adapt.Levels
	pool    *SnapshotPool
}

func New(sub substrate.Substrate, cones []*cone.GrowthCone, cfg Config) (*Simulation, error) {
	if len(cones) == 0 {
		return nil, ErrNoCones
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Adaptation && cfg.Strategy == nil {
		cfg.Strategy = adapt.Desensitization{}
	}
	return &Simulation{
		sub:       sub,
		cones:     cones,
		cfg:       cfg,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    logging.Discard(),
		pool:      NewSnapshotPool(len(cones)),
	}, nil
}

func (s *Simulation) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulation) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// SetLogger replaces the default discarding logger.
func (s *Simulation) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

func (s *Simulation) Phase() Phase                   { return s.phase }
func (s *Simulation) Config() Config                 { return s.cfg }
func (s *Simulation) Substrate() substrate.Substrate { return s.sub }
func (s *Simulation) Cones() []*cone.GrowthCone      { return s.cones }

func validateConfig(cfg Config) error {
	switch {
	case cfg.NumSteps <= 0:
		return fmt.Errorf("%w: num_steps must be positive, got %d", ErrInvalidConfig, cfg.NumSteps)
	case cfg.StepSize <= 0:
		return fmt.Errorf("%w: step_size must be positive, got %d", ErrInvalidConfig, cfg.StepSize)
	case !probability(cfg.XStepP) || !probability(cfg.YStepP):
		return fmt.Errorf("%w: step probabilities (%g, %g) must lie in [0, 1]", ErrInvalidConfig, cfg.XStepP, cfg.YStepP)
	case cfg.Sigma < 0 || cfg.Force < 0:
		return fmt.Errorf("%w: sigma and force must be non-negative", ErrInvalidConfig)
	case cfg.Steepness <= 0 || cfg.Shift <= 0 || cfg.Height <= 0:
		return fmt.Errorf("%w: sigmoid steepness, shift and height must be positive", ErrInvalidConfig)
	case cfg.Workers < 0:
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalidConfig, cfg.Workers)
	}
	if cfg.Adaptation {
		if err := cfg.AdaptParams.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

func probability(p float64) bool { return p >= 0 && p <= 1 }

// Run advances every cone for Config.NumSteps steps. A NaN or Inf during a
// step aborts the run with a *SimulationError; the partial result up to
// the last completed step is returned alongside it.
func (s *Simulation) Run() (*Result, error) {
	if s.phase != Initialized {
		return nil, ErrAlreadyRun
	}
	s.phase = Running
	s.prepare()

	n := len(s.cones)
	result := &Result{
		Cones:          make([]ConeResult, n),
		FFCoefficients: make([]float64, 0, s.cfg.NumSteps),
		Metrics:        make(map[string]float64),
	}
	for i, gc := range s.cones {
		result.Cones[i] = ConeResult{
			ID:              gc.ID,
			Origin:          gc.Origin,
			Potentials:      make([]float64, 0, s.cfg.NumSteps),
			InitialLigand:   gc.Ligand,
			InitialReceptor: gc.Receptor,
		}
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	s.logger.Info("simulation started",
		"cones", n,
		"steps", s.cfg.NumSteps,
		"seed", s.cfg.Seed,
		"adaptation", s.cfg.Adaptation,
		"workers", s.cfg.Workers,
	)

	schedule := s.cfg.Schedule()
	readings := make([]potential.Reading, n)

	for step := 0; step < s.cfg.NumSteps; step++ {
		ffCoef := schedule.At(step)
		s.logger.Debug("step", "step", step, "ff_coef", ffCoef)

		snap := s.pool.Snapshot(s.cones)
		err := s.advanceAll(step, ffCoef, snap, readings)
		s.pool.Put(snap)
		if err != nil {
			s.phase = Failed
			s.finish(result)
			s.logger.Error("simulation aborted", "err", err)
			return result, err
		}

		for i, gc := range s.cones {
			if s.cfg.Adaptation {
				gc.Ligand, gc.Receptor = s.pending[i].Ligand, s.pending[i].Receptor
			}
			gc.Record()
			result.Cones[i].Potentials = append(result.Cones[i].Potentials, readings[i].Potential)
			result.Cones[i].Final = readings[i]
		}
		result.FFCoefficients = append(result.FFCoefficients, ffCoef)
		result.StepsTaken++

		rec := StepRecord{Step: step, FFCoef: ffCoef, Cones: s.cones, Readings: readings}
		for _, m := range s.metrics {
			m.Observe(rec)
		}
		for _, obs := range s.observers {
			obs.OnStep(rec)
		}
	}

	s.phase = Complete
	s.finish(result)
	s.logger.Info("simulation complete", "steps", result.StepsTaken)
	return result, nil
}

func (s *Simulation) prepare() {
	seed := uint64(s.cfg.Seed)
	s.rngs = make([]*rand.Rand, len(s.cones))
	for i, gc := range s.cones {
		s.rngs[i] = rand.New(rand.NewPCG(seed, uint64(gc.ID)))
	}
	if s.cfg.Adaptation {
		s.states = make([]*adapt.State, len(s.cones))
		s.pending = make([]adapt.Levels, len(s.cones))
		for i, gc := range s.cones {
			s.states[i] = adapt.NewState(adapt.Levels{Ligand: gc.Ligand, Receptor: gc.Receptor}, s.cfg.AdaptParams)
		}
	}
}

func (s *Simulation) finish(result *Result) {
	for i, gc := range s.cones {
		result.Cones[i].Trajectory = append([]geom.Point(nil), gc.Trajectory...)
		result.Cones[i].Ligand = gc.Ligand
		result.Cones[i].Receptor = gc.Receptor
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	// adaptation memory lives only for the run
	s.states = nil
	s.pending = nil
}

// advanceAll moves every cone one step. With more than one worker cones run
// concurrently; the error reported is always the one of the lowest cone
// index so failures do not depend on scheduling.
func (s *Simulation) advanceAll(step int, ffCoef float64, snap []potential.Neighbor, readings []potential.Reading) error {
	if s.cfg.Workers <= 1 {
		for i := range s.cones {
			r, err := s.advance(step, i, ffCoef, snap)
			if err != nil {
				return err
			}
			readings[i] = r
		}
		return nil
	}

	errs := make([]error, len(s.cones))
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(s.cfg.Workers)
	for i := range s.cones {
		g.Go(func() error {
			readings[i], errs[i] = s.advance(step, i, ffCoef, snap)
			return nil
		})
	}
	_ = g.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// advance proposes and evaluates the move of cone i, then computes its
// adapted levels. Position and levels are staged and only take effect once
// the whole population has advanced. It writes only to cone i and its own
// adaptation slots.
func (s *Simulation) advance(step, i int, ffCoef float64, snap []potential.Neighbor) (potential.Reading, error) {
	gc := s.cones[i]
	rng := s.rngs[i]

	cand := gc.Pos
	if rng.Float64() < s.cfg.XStepP {
		cand.X += s.displacement(gc, 1, 0, ffCoef, snap, rng)
	}
	if rng.Float64() < s.cfg.YStepP {
		cand.Y += s.displacement(gc, 0, 1, ffCoef, snap, rng)
	}
	cand = cand.Clamp(s.sub.Rows(), s.sub.Cols())

	reading := s.cfg.Field.Evaluate(gc, cand, snap, s.sub, ffCoef)
	if !reading.Valid() {
		return reading, &SimulationError{Step: step, ConeID: gc.ID, Wrapped: ErrInvalidState}
	}
	gc.NewPos = cand

	if s.cfg.Adaptation {
		lv := s.states[i].Apply(s.cfg.Strategy, adapt.Sample{
			Forward:   reading.Forward,
			Reverse:   reading.Reverse,
			Potential: reading.Potential,
		})
		if !finite(lv.Ligand) || !finite(lv.Receptor) {
			return reading, &SimulationError{Step: step, ConeID: gc.ID, Wrapped: ErrInvalidState}
		}
		s.pending[i] = lv
	}

	if s.logger.Enabled(context.Background(), logging.LevelTrace) {
		s.logger.Log(context.Background(), logging.LevelTrace, "cone step",
			"step", step,
			"cone", gc.ID,
			"x", cand.X,
			"y", cand.Y,
			"forward", reading.Forward,
			"reverse", reading.Reverse,
			"potential", reading.Potential,
		)
	}
	return reading, nil
}

// displacement returns the signed move along (ax, ay). The potential is
// probed one step either side of the current position; the cone drifts
// down that gradient by Force·StepSize with Gaussian noise of scale Sigma.
func (s *Simulation) displacement(gc *cone.GrowthCone, ax, ay int, ffCoef float64, snap []potential.Neighbor, rng *rand.Rand) int {
	h := s.cfg.StepSize
	rows, cols := s.sub.Rows(), s.sub.Cols()
	plus := gc.Pos.Add(ax*h, ay*h).Clamp(rows, cols)
	minus := gc.Pos.Add(-ax*h, -ay*h).Clamp(rows, cols)

	var g float64
	if plus != minus {
		pp := s.cfg.Field.Potential(gc, plus, snap, s.sub, ffCoef)
		pm := s.cfg.Field.Potential(gc, minus, snap, s.sub, ffCoef)
		g = sign(pp - pm)
	}

	move := float64(h) * (-s.cfg.Force*g + s.cfg.Sigma*rng.NormFloat64())
	return int(math.Round(move))
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
