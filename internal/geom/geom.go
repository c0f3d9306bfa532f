// Package geom holds the planar geometry used by the guidance model:
// distances on the integer grid, footprint boxes clipped to the substrate,
// and the overlap area of two equally sized growth cones.
package geom

import "math"

// Point is a grid coordinate. X indexes columns, Y indexes rows.
type Point struct {
	X, Y int
}

func (p Point) Add(dx, dy int) Point { return Point{p.X + dx, p.Y + dy} }

// Clamp limits p to [0, cols-1] × [0, rows-1].
func (p Point) Clamp(rows, cols int) Point {
	return Point{clampInt(p.X, 0, cols-1), clampInt(p.Y, 0, rows-1)}
}

// Distance is the Euclidean distance between two grid points.
func Distance(p1, p2 Point) float64 {
	return DistanceF(float64(p1.X), float64(p1.Y), float64(p2.X), float64(p2.Y))
}

// DistanceF is Distance for fractional coordinates.
func DistanceF(x1, y1, x2, y2 float64) float64 {
	dx, dy := x2-x1, y2-y1
	return math.Sqrt(dx*dx + dy*dy)
}

// Box is an inclusive-bounds rectangle on the grid.
type Box struct {
	XMin, XMax, YMin, YMax int
}

// BoundingBox clips the square [pos-size, pos+size]² to a rows×cols grid.
// Near an edge the result is not centred on pos; footprints built from it
// inherit that asymmetry.
func BoundingBox(pos Point, size, rows, cols int) Box {
	return Box{
		XMin: max(0, pos.X-size),
		XMax: min(cols-1, pos.X+size),
		YMin: max(0, pos.Y-size),
		YMax: min(rows-1, pos.Y+size),
	}
}

// Center returns the box midpoint as (x, y).
func (b Box) Center() (float64, float64) {
	return float64(b.XMin+b.XMax) / 2, float64(b.YMin+b.YMax) / 2
}

// EdgeLength is the box extent along y, which the footprint uses as its
// diameter.
func (b Box) EdgeLength() float64 {
	return math.Abs(float64(b.YMin - b.YMax))
}

// overlapCorrection scales the half-lens term below. The footprint
// calibration of the model depends on this exact value.
const overlapCorrection = 1.5

// IntersectionArea returns the overlap of two circles of the given radius
// centred on c1 and c2. Coincident centres give the full disc; centres
// 2·radius or more apart give 0. In between it is
// 1.5·(r²·acos(x/r) − x·y) with x = d/2 and y = sqrt(r² − x²).
func IntersectionArea(c1, c2 Point, radius int) float64 {
	d := Distance(c1, c2)
	r := float64(radius)

	switch {
	case d == 0:
		return r * r * math.Pi
	case d >= 2*r:
		return 0
	}

	x := (d * d) / (2 * d)
	y := math.Sqrt(r*r - x*x)
	area := r*r*math.Acos(x/r) - x*y
	return area * overlapCorrection
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
