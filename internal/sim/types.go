package sim

import (
	"fmt"

	"github.com/san-kum/axonguide/internal/adapt"
	"github.com/san-kum/axonguide/internal/cone"
	"github.com/san-kum/axonguide/internal/geom"
	"github.com/san-kum/axonguide/internal/potential"
)

// Phase is the lifecycle position of a Simulation.
type Phase int

const (
	Initialized Phase = iota
	Running
	Complete
	Failed
)

func (p Phase) String() string {
	switch p {
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// StepRecord is what observers see after every completed step. Cones have
// already been promoted to their committed positions.
type StepRecord struct {
	Step     int
	FFCoef   float64
	Cones    []*cone.GrowthCone
	Readings []potential.Reading
}

// Metric accumulates a scalar over a run.
type Metric interface {
	Name() string
	Observe(rec StepRecord)
	Value() float64
	Reset()
}

// Observer is notified after every step.
type Observer interface {
	OnStep(rec StepRecord)
}

// Config holds the movement, schedule and signalling parameters of a run.
type Config struct {
	NumSteps int
	StepSize int
	XStepP   float64
	YStepP   float64
	Sigma    float64
	Force    float64

	Steepness float64
	Shift     float64
	Height    float64

	Field potential.Field

	Adaptation  bool
	Strategy    adapt.Strategy
	AdaptParams adapt.Params

	Seed    int64
	Workers int
}

func DefaultConfig() Config {
	return Config{
		NumSteps:  400,
		StepSize:  1,
		XStepP:    0.55,
		YStepP:    0.45,
		Sigma:     0.3,
		Force:     1.0,
		Steepness: 3,
		Shift:     2,
		Height:    potential.DefaultHeight,
		Field:     potential.AllOn(),
		AdaptParams: adapt.Params{
			Mu:            0.01,
			Lambda:        0.005,
			HistoryLength: 10,
		},
		Workers: 1,
	}
}

// Schedule returns the FF coefficient schedule of the run.
func (c Config) Schedule() potential.Schedule {
	return potential.Schedule{
		NumSteps:  c.NumSteps,
		Steepness: c.Steepness,
		Shift:     c.Shift,
		Height:    c.Height,
	}
}

// ConeResult is the per-cone output of a run.
type ConeResult struct {
	ID              int
	Origin          geom.Point
	Trajectory      []geom.Point
	Potentials      []float64
	Final           potential.Reading
	InitialLigand   float64
	InitialReceptor float64
	Ligand          float64
	Receptor        float64
}

// End is the last committed position, or the origin before any step.
func (c ConeResult) End() geom.Point {
	if len(c.Trajectory) == 0 {
		return c.Origin
	}
	return c.Trajectory[len(c.Trajectory)-1]
}

// Displacement is the straight-line distance from origin to end.
func (c ConeResult) Displacement() float64 {
	return geom.Distance(c.Origin, c.End())
}

type Result struct {
	Cones          []ConeResult
	FFCoefficients []float64
	StepsTaken     int
	Metrics        map[string]float64
}

// MeanPotentials averages the potential over all cones for each step.
func (r *Result) MeanPotentials() []float64 {
	out := make([]float64, r.StepsTaken)
	if len(r.Cones) == 0 {
		return out
	}
	for _, c := range r.Cones {
		for i := 0; i < r.StepsTaken && i < len(c.Potentials); i++ {
			out[i] += c.Potentials[i]
		}
	}
	for i := range out {
		out[i] /= float64(len(r.Cones))
	}
	return out
}
