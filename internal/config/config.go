package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRows      = 60
	DefaultCols      = 120
	DefaultCones     = 10
	DefaultConeSize  = 3
	DefaultSubstrate = "continuous"
	DefaultNumSteps  = 400
)

// ErrInvalid is wrapped by Validate with the offending key.
var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Seed       int64            `yaml:"seed"`
	Workers    int              `yaml:"workers"`
	LogLevel   string           `yaml:"log_level"`
	Grid       GridConfig       `yaml:"grid"`
	Cones      ConeConfig       `yaml:"cones"`
	Substrate  SubstrateConfig  `yaml:"substrate"`
	Movement   MovementConfig   `yaml:"movement"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Signals    SignalConfig     `yaml:"signals"`
	Adaptation AdaptationConfig `yaml:"adaptation"`
}

type GridConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

type ConeConfig struct {
	Count int `yaml:"count"`
	Size  int `yaml:"size"`
}

// SubstrateConfig selects a pattern; First and Second are the low and high
// concentration bounds it paints with.
type SubstrateConfig struct {
	Type   string  `yaml:"type"`
	First  float64 `yaml:"first"`
	Second float64 `yaml:"second"`
}

type MovementConfig struct {
	StepSize int     `yaml:"step_size"`
	NumSteps int     `yaml:"num_steps"`
	XStepP   float64 `yaml:"x_step_p"`
	YStepP   float64 `yaml:"y_step_p"`
	Sigma    float64 `yaml:"sigma"`
	Force    float64 `yaml:"force"`
}

type ScheduleConfig struct {
	Steepness float64 `yaml:"steepness"`
	Shift     float64 `yaml:"shift"`
	Height    float64 `yaml:"height"`
}

type SignalConfig struct {
	Forward bool `yaml:"forward"`
	Reverse bool `yaml:"reverse"`
	FF      bool `yaml:"ff_inter"`
	FT      bool `yaml:"ft_inter"`
}

type AdaptationConfig struct {
	Enabled       bool    `yaml:"enabled"`
	Strategy      string  `yaml:"strategy"`
	Mu            float64 `yaml:"mu"`
	Lambda        float64 `yaml:"lambda"`
	HistoryLength int     `yaml:"history_length"`
}

func DefaultConfig() *Config {
	return &Config{
		Seed:     42,
		Workers:  1,
		LogLevel: "info",
		Grid:     GridConfig{Rows: DefaultRows, Cols: DefaultCols},
		Cones:    ConeConfig{Count: DefaultCones, Size: DefaultConeSize},
		Substrate: SubstrateConfig{
			Type:   DefaultSubstrate,
			First:  0.01,
			Second: 0.99,
		},
		Movement: MovementConfig{
			StepSize: 1,
			NumSteps: DefaultNumSteps,
			XStepP:   0.55,
			YStepP:   0.45,
			Sigma:    0.3,
			Force:    1.0,
		},
		Schedule: ScheduleConfig{Steepness: 3, Shift: 2, Height: 1},
		Signals:  SignalConfig{Forward: true, Reverse: true, FF: true, FT: true},
		Adaptation: AdaptationConfig{
			Strategy:      "desensitization",
			Mu:            0.01,
			Lambda:        0.005,
			HistoryLength: 10,
		},
	}
}

// Load reads a YAML file over the defaults; keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// LoadOver reads a YAML file over a copy of base; base is not modified.
func LoadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseOver(base, data)
}

func Parse(data []byte) (*Config, error) {
	return ParseOver(DefaultConfig(), data)
}

func ParseOver(base *Config, data []byte) (*Config, error) {
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
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

func invalid(key string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalid, key, fmt.Sprintf(format, args...))
}

// Validate checks ranges only. Unknown substrate types and strategies are
// reported by the experiment registry.
func (c *Config) Validate() error {
	switch {
	case c.Workers < 0:
		return invalid("workers", "must be >= 0, got %d", c.Workers)
	case c.Grid.Rows <= 0:
		return invalid("grid.rows", "must be positive, got %d", c.Grid.Rows)
	case c.Grid.Cols <= 0:
		return invalid("grid.cols", "must be positive, got %d", c.Grid.Cols)
	case c.Cones.Count <= 0:
		return invalid("cones.count", "must be positive, got %d", c.Cones.Count)
	case c.Cones.Size <= 0:
		return invalid("cones.size", "must be positive, got %d", c.Cones.Size)
	case c.Substrate.Type == "":
		return invalid("substrate.type", "must be set")
	case c.Substrate.First < 0 || c.Substrate.Second < 0:
		return invalid("substrate", "bounds must be non-negative, got %g and %g", c.Substrate.First, c.Substrate.Second)
	case c.Movement.StepSize <= 0:
		return invalid("movement.step_size", "must be positive, got %d", c.Movement.StepSize)
	case c.Movement.NumSteps <= 0:
		return invalid("movement.num_steps", "must be positive, got %d", c.Movement.NumSteps)
	case c.Movement.XStepP < 0 || c.Movement.XStepP > 1:
		return invalid("movement.x_step_p", "must lie in [0, 1], got %g", c.Movement.XStepP)
	case c.Movement.YStepP < 0 || c.Movement.YStepP > 1:
		return invalid("movement.y_step_p", "must lie in [0, 1], got %g", c.Movement.YStepP)
	case c.Movement.Sigma < 0:
		return invalid("movement.sigma", "must be >= 0, got %g", c.Movement.Sigma)
	case c.Movement.Force < 0:
		return invalid("movement.force", "must be >= 0, got %g", c.Movement.Force)
	case c.Schedule.Steepness <= 0:
		return invalid("schedule.steepness", "must be positive, got %g", c.Schedule.Steepness)
	case c.Schedule.Shift <= 0:
		return invalid("schedule.shift", "must be positive, got %g", c.Schedule.Shift)
	case c.Schedule.Height <= 0:
		return invalid("schedule.height", "must be positive, got %g", c.Schedule.Height)
	}
	if c.Adaptation.Enabled {
		a := c.Adaptation
		switch {
		case a.Mu < 0:
			return invalid("adaptation.mu", "must be >= 0, got %g", a.Mu)
		case a.Lambda < 0 || a.Lambda > 1:
			return invalid("adaptation.lambda", "must lie in [0, 1], got %g", a.Lambda)
		case a.HistoryLength < 1:
			return invalid("adaptation.history_length", "must be >= 1, got %d", a.HistoryLength)
		}
	}
	return nil
}

// Set assigns a numeric parameter by its dotted YAML key. It backs
// parameter sweeps and CLI overrides.
func (c *Config) Set(key string, v float64) error {
	switch key {
	case "seed":
		c.Seed = int64(v)
	case "cones.count":
		c.Cones.Count = int(v)
	case "cones.size":
		c.Cones.Size = int(v)
	case "substrate.first":
		c.Substrate.First = v
	case "substrate.second":
		c.Substrate.Second = v
	case "movement.step_size":
		c.Movement.StepSize = int(v)
	case "movement.num_steps":
		c.Movement.NumSteps = int(v)
	case "movement.x_step_p":
		c.Movement.XStepP = v
	case "movement.y_step_p":
		c.Movement.YStepP = v
	case "movement.sigma":
		c.Movement.Sigma = v
	case "movement.force":
		c.Movement.Force = v
	case "schedule.steepness":
		c.Schedule.Steepness = v
	case "schedule.shift":
		c.Schedule.Shift = v
	case "schedule.height":
		c.Schedule.Height = v
	case "adaptation.mu":
		c.Adaptation.Mu = v
	case "adaptation.lambda":
		c.Adaptation.Lambda = v
	case "adaptation.history_length":
		c.Adaptation.HistoryLength = int(v)
	default:
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalid, key)
	}
	return nil
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
