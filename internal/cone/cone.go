// Package cone defines the growth cone, the motile axon tip that carries
// its own ligand and receptor levels across the substrate.
package cone

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/axonguide/internal/geom"
)

// ErrInvalidCone is returned for a non-positive size or negative levels.
var ErrInvalidCone = errors.New("cone: invalid growth cone")

// Level bounds for population construction.
const (
	minLevel      = 0.01
	levelSpan     = 0.99
	levelExponent = 1.2
)

// GrowthCone is one simulated axon tip.
type GrowthCone struct {
	ID         int
	Size       int
	Origin     geom.Point
	Pos        geom.Point
	NewPos     geom.Point
	Ligand     float64
	Receptor   float64
	Trajectory []geom.Point
}

// New creates a growth cone at pos.
func New(id int, pos geom.Point, size int, ligand, receptor float64) (*GrowthCone, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidCone, size)
	}
	if ligand < 0 || receptor < 0 || math.IsNaN(ligand) || math.IsNaN(receptor) {
		return nil, fmt.Errorf("%w: levels (%g, %g)", ErrInvalidCone, ligand, receptor)
	}
	return &GrowthCone{
		ID:       id,
		Size:     size,
		Origin:   pos,
		Pos:      pos,
		NewPos:   pos,
		Ligand:   ligand,
		Receptor: receptor,
	}, nil
}

// Record appends the committed position and promotes it to the current one.
func (gc *GrowthCone) Record() {
	gc.Trajectory = append(gc.Trajectory, gc.NewPos)
	gc.Pos = gc.NewPos
}

// Clone returns a deep copy.
func (gc *GrowthCone) Clone() *GrowthCone {
	c := *gc
	c.Trajectory = append([]geom.Point(nil), gc.Trajectory...)
	return &c
}

// PopulationLevels returns the receptor and ligand level of every cone in a
// population of n: receptors follow 0.01 + (i/(n-1))^1.2 · 0.99 and ligands
// are the same sequence reversed.
func PopulationLevels(n int) (receptors, ligands []float64) {
	if n <= 0 {
		return nil, nil
	}
	grad := make([]float64, n)
	if n == 1 {
		grad[0] = 0
	} else {
		floats.Span(grad, 0, 1)
	}

	receptors = make([]float64, n)
	for i, g := range grad {
		receptors[i] = minLevel + math.Pow(g, levelExponent)*levelSpan
	}
	ligands = make([]float64, n)
	for i := range receptors {
		ligands[i] = receptors[n-1-i]
	}
	return receptors, ligands
}

// StartRows spaces n start rows evenly from size to rows-1+size, truncated
// to integers.
func StartRows(n, size, rows int) []int {
	if n <= 0 {
		return nil
	}
	ys := make([]float64, n)
	if n == 1 {
		ys[0] = float64(size)
	} else {
		floats.Span(ys, float64(size), float64(rows-1+size))
	}
	out := make([]int, n)
	for i, y := range ys {
		out[i] = int(y)
	}
	return out
}

// NewPopulation builds n cones of the given size on a vertical line at
// x = size, with levels from PopulationLevels. rows is the patterned row
// count; the substrate margin of size cells is accounted for by the start
// rows.
func NewPopulation(n, size, rows int) ([]*GrowthCone, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: population of %d", ErrInvalidCone, n)
	}
	receptors, ligands := PopulationLevels(n)
	ys := StartRows(n, size, rows)

	cones := make([]*GrowthCone, 0, n)
	for i := 0; i < n; i++ {
		gc, err := New(i, geom.Point{X: size, Y: ys[i]}, size, ligands[i], receptors[i])
		if err != nil {
			return nil, err
		}
		cones = append(cones, gc)
	}
	return cones, nil
}
