package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Factory builds a fresh simulation for one ensemble member.
type Factory func(seed int64) (*Simulation, error)

// Ensemble runs independent simulations that differ only in seed.
type Ensemble struct {
	factory   Factory
	numRuns   int
	seedStart int64
	workers   int
}

func NewEnsemble(f Factory, numRuns int, seedStart int64, workers int) *Ensemble {
	if workers < 1 {
		workers = 1
	}
	return &Ensemble{factory: f, numRuns: numRuns, seedStart: seedStart, workers: workers}
}

// Run executes every member. Results are indexed by run, member i using
// seed seedStart+i. The context only gates members that have not started.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	if e.numRuns <= 0 {
		return nil, fmt.Errorf("%w: ensemble needs at least one run", ErrInvalidConfig)
	}

	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return err
			}
			seed := e.seedStart + int64(i)
			s, err := e.factory(seed)
			if err != nil {
				errs[i] = fmt.Errorf("run %d: %w", i, err)
				return errs[i]
			}
			results[i], errs[i] = s.Run()
			if errs[i] != nil {
				errs[i] = fmt.Errorf("run %d (seed %d): %w", i, seed, errs[i])
			}
			return errs[i]
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
