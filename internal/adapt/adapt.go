// Package adapt models time-dependent adjustment of a growth cone's
// receptor and ligand levels from its recent signalling history.
//
// Each cone owns a [State]: a bounded window of its latest samples plus
// its reference (initial) levels. Every step the simulation pushes the new
// sample and asks a [Strategy] for the next levels; the result is clamped
// at zero so levels never go negative regardless of strategy.
package adapt

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams is returned by Params.Validate.
var ErrInvalidParams = errors.New("adapt: invalid adaptation parameters")

// Sample is one step's rounded signals and resulting potential.
type Sample struct {
	Forward   float64
	Reverse   float64
	Potential float64
}

// Levels are a cone's ligand and receptor concentrations.
type Levels struct {
	Ligand   float64
	Receptor float64
}

// Params configures adaptation. Mu scales the response to signal
// deviation, Lambda the recovery towards the initial levels, HistoryLength
// the window size.
type Params struct {
	Mu            float64
	Lambda        float64
	HistoryLength int
}

func (p Params) Validate() error {
	if p.Mu < 0 || math.IsNaN(p.Mu) {
		return fmt.Errorf("%w: mu %g", ErrInvalidParams, p.Mu)
	}
	if p.Lambda < 0 || p.Lambda > 1 || math.IsNaN(p.Lambda) {
		return fmt.Errorf("%w: lambda %g not in [0, 1]", ErrInvalidParams, p.Lambda)
	}
	if p.HistoryLength < 1 {
		return fmt.Errorf("%w: history length %d", ErrInvalidParams, p.HistoryLength)
	}
	return nil
}

// State is the per-cone adaptation memory.
type State struct {
	Params  Params
	Initial Levels
	Current Levels

	ring []Sample
	head int
	n    int

	ref    Sample
	hasRef bool
}

// NewState creates the memory for a cone starting at initial levels.
func NewState(initial Levels, p Params) *State {
	size := max(p.HistoryLength, 1)
	return &State{
		Params:  p,
		Initial: initial,
		Current: initial,
		ring:    make([]Sample, size),
	}
}

// Push records s, evicting the oldest sample once the window is full. The
// first sample ever pushed becomes the reference.
func (st *State) Push(s Sample) {
	if !st.hasRef {
		st.ref = s
		st.hasRef = true
	}
	st.ring[st.head] = s
	st.head = (st.head + 1) % len(st.ring)
	if st.n < len(st.ring) {
		st.n++
	}
}

// Len is the number of samples held.
func (st *State) Len() int { return st.n }

// Reference is the first sample recorded.
func (st *State) Reference() Sample { return st.ref }

// Samples returns the window oldest first.
func (st *State) Samples() []Sample {
	out := make([]Sample, 0, st.n)
	start := (st.head - st.n + len(st.ring)) % len(st.ring)
	for i := 0; i < st.n; i++ {
		out = append(out, st.ring[(start+i)%len(st.ring)])
	}
	return out
}

// Mean averages the window component-wise. An empty window averages to zero.
func (st *State) Mean() Sample {
	if st.n == 0 {
		return Sample{}
	}
	var m Sample
	for _, s := range st.Samples() {
		m.Forward += s.Forward
		m.Reverse += s.Reverse
		m.Potential += s.Potential
	}
	k := float64(st.n)
	return Sample{Forward: m.Forward / k, Reverse: m.Reverse / k, Potential: m.Potential / k}
}

// Apply pushes s, asks strat for the next levels and stores them clamped
// at zero.
func (st *State) Apply(strat Strategy, s Sample) Levels {
	st.Push(s)
	next := strat.Next(st)
	next.Ligand = math.Max(0, next.Ligand)
	next.Receptor = math.Max(0, next.Receptor)
	st.Current = next
	return next
}
