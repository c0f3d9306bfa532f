// Package optim sweeps config parameters over a grid and ranks the points
// by a run metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/axonguide/internal/config"
	"github.com/san-kum/axonguide/internal/experiment"
)

var ErrEmptyGrid = errors.New("optim: empty parameter grid")

type Goal int

const (
	Minimize Goal = iota
	Maximize
)

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	goal       Goal
	workers    int
	logger     *slog.Logger
}

func NewGridSearch(params []string, ranges [][]float64, goal Goal, workers int) *GridSearch {
	if workers < 1 {
		workers = 1
	}
	return &GridSearch{paramNames: params, ranges: ranges, goal: goal, workers: workers}
}

func (g *GridSearch) SetLogger(l *slog.Logger) { g.logger = l }

// Points enumerates the grid in row-major order, last parameter fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.enumerate(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.enumerate(depth+1, newParams, out)
	}
}

// Search runs base with every grid point applied and returns all trials
// sorted best first. Grid points run concurrently up to the worker limit;
// each run keeps the base seed so points differ only in their parameters.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) ([]Trial, error) {
	if len(g.paramNames) == 0 || len(g.paramNames) != len(g.ranges) {
		return nil, ErrEmptyGrid
	}
	points := g.Points()
	if len(points) == 0 {
		return nil, ErrEmptyGrid
	}

	trials := make([]Trial, len(points))
	errs := make([]error, len(points))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, params := range points {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return err
			}
			trials[i], errs[i] = g.evaluate(base, params, metricName)
			return errs[i]
		})
	}
	_ = eg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(trials, func(a, b int) bool { return g.better(trials[a].Value, trials[b].Value) })
	return trials, nil
}

func (g *GridSearch) evaluate(base *config.Config, params map[string]float64, metricName string) (Trial, error) {
	cfg := base.Clone()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := cfg.Set(k, params[k]); err != nil {
			return Trial{}, err
		}
	}

	exp, err := experiment.Build(cfg, nil)
	if err != nil {
		return Trial{}, fmt.Errorf("optim: %v: %w", params, err)
	}
	result, err := exp.Run()
	if err != nil {
		return Trial{}, fmt.Errorf("optim: %v: %w", params, err)
	}

	val, ok := result.Metrics[metricName]
	if !ok {
		return Trial{}, fmt.Errorf("optim: unknown metric: %s", metricName)
	}
	if g.logger != nil {
		g.logger.Debug("trial", "params", params, metricName, val)
	}
	return Trial{Params: params, Value: val}, nil
}

func (g *GridSearch) better(a, b float64) bool {
	if math.IsNaN(b) {
		return !math.IsNaN(a)
	}
	if g.goal == Maximize {
		return a > b
	}
	return a < b
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	floats.Span(out, lo, hi)
	return out
}
