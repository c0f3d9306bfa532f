package potential

import (
	"math"
	"strconv"

	"github.com/san-kum/axonguide/internal/cone"
	"github.com/san-kum/axonguide/internal/geom"
	"github.com/san-kum/axonguide/internal/substrate"
)

const (
	// SignalDecimals is the fixed precision signals are rounded to before
	// the zero test.
	SignalDecimals = 6

	// SignalFloor replaces a zero signal inside the logarithm.
	SignalFloor = 0.0001
)

// Field selects which interactions and signal directions contribute.
type Field struct {
	Forward bool
	Reverse bool
	FF      bool
	FT      bool
}

// AllOn enables every term.
func AllOn() Field { return Field{Forward: true, Reverse: true, FF: true, FT: true} }

// Neighbor is the pre-step view of another cone.
type Neighbor struct {
	ID       int
	Pos      geom.Point
	Ligand   float64
	Receptor float64
}

// NeighborOf snapshots gc's current state.
func NeighborOf(gc *cone.GrowthCone) Neighbor {
	return Neighbor{ID: gc.ID, Pos: gc.Pos, Ligand: gc.Ligand, Receptor: gc.Receptor}
}

// Reading is the full breakdown of one potential evaluation. Forward and
// Reverse are the rounded signals.
type Reading struct {
	FTLigands   float64
	FTReceptors float64
	FFLigands   float64
	FFReceptors float64
	Forward     float64
	Reverse     float64
	Potential   float64
}

// Valid reports whether every component is finite.
func (r Reading) Valid() bool {
	for _, v := range [...]float64{r.FTLigands, r.FTReceptors, r.FFLigands, r.FFReceptors, r.Forward, r.Reverse, r.Potential} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Evaluate computes the reading for gc placed at the candidate position at.
// Neighbours are read at their current positions; gc itself is skipped by ID.
func (f Field) Evaluate(gc *cone.GrowthCone, at geom.Point, others []Neighbor, s substrate.Substrate, ffCoef float64) Reading {
	var r Reading
	if f.FT {
		r.FTLigands, r.FTReceptors = FTInteraction(at, gc.Size, s)
	}
	if f.FF {
		r.FFLigands, r.FFReceptors = FFInteraction(gc.ID, at, gc.Size, others)
	}

	var forward, reverse float64
	if f.Forward {
		forward = gc.Receptor * (r.FTLigands + gc.Ligand + ffCoef*r.FFLigands)
	}
	if f.Reverse {
		reverse = gc.Ligand * (r.FTReceptors + gc.Receptor + ffCoef*r.FFReceptors)
	}

	r.Forward = RoundSignal(forward)
	r.Reverse = RoundSignal(reverse)
	r.Potential = GuidancePotential(r.Forward, r.Reverse)
	return r
}

// Potential is Evaluate reduced to the scalar guidance potential.
func (f Field) Potential(gc *cone.GrowthCone, at geom.Point, others []Neighbor, s substrate.Substrate, ffCoef float64) float64 {
	return f.Evaluate(gc, at, others, s, ffCoef).Potential
}

// RoundSignal rounds v to SignalDecimals places. Rounding is decided on
// the exact binary value, so 5e-7 (stored just below the half) goes to 0.
func RoundSignal(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', SignalDecimals, 64), 64)
	return r
}

// GuidancePotential returns |ln(reverse) − ln(forward)| for already rounded
// signals. Both zero is defined as 0; a single zero is floored to
// SignalFloor so the asymmetry survives without going infinite.
func GuidancePotential(forward, reverse float64) float64 {
	if forward == 0 && reverse == 0 {
		return 0
	}
	if forward == 0 {
		forward = SignalFloor
	}
	if reverse == 0 {
		reverse = SignalFloor
	}
	return math.Abs(math.Log(reverse) - math.Log(forward))
}

// FTInteraction sums substrate ligands and receptors under the circular
// footprint of a cone of the given size at pos. The footprint is derived
// from the clipped bounding box: its centre is the box midpoint and its
// radius half the box extent along y. Rows YMin..YMax-1 and columns
// XMin..XMax-1 are visited; cells outside the box are never read.
func FTInteraction(pos geom.Point, size int, s substrate.Substrate) (ligands, receptors float64) {
	b := geom.BoundingBox(pos, size, s.Rows(), s.Cols())
	cx, cy := b.Center()
	radius := b.EdgeLength() / 2

	for y := b.YMin; y < b.YMax; y++ {
		for x := b.XMin; x < b.XMax; x++ {
			if geom.DistanceF(cx, cy, float64(x), float64(y)) > radius {
				continue
			}
			lig, rec := s.At(x, y)
			ligands += lig
			receptors += rec
		}
	}
	return ligands, receptors
}

// FFInteraction sums neighbour ligands and receptors weighted by footprint
// overlap with a cone of the given size at pos. Neighbours 2·size or more
// away and the neighbour with id self are skipped.
func FFInteraction(self int, pos geom.Point, size int, others []Neighbor) (ligands, receptors float64) {
	reach := float64(2 * size)
	for _, o := range others {
		if o.ID == self {
			continue
		}
		if geom.Distance(o.Pos, pos) >= reach {
			continue
		}
		area := geom.IntersectionArea(pos, o.Pos, size)
		ligands += area * o.Ligand
		receptors += area * o.Receptor
	}
	return ligands, receptors
}
