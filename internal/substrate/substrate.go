// Package substrate provides the ligand/receptor fields growth cones move on.
//
// A substrate is a rows×cols grid of non-negative ligand and receptor
// concentrations. Grids are filled once by a [Pattern] selected through
// [New] and are read-only afterwards:
//
//	s, err := substrate.New("continuous", substrate.Params{Rows: 60, Cols: 120, Offset: 3, First: 0.01, Second: 0.99})
//	lig, rec := s.At(x, y)
package substrate

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrUnknownPattern is returned by New for an unrecognised type name.
	ErrUnknownPattern = errors.New("substrate: unknown substrate type")

	// ErrInvalidParams is returned by New for non-positive dimensions or
	// negative bounds.
	ErrInvalidParams = errors.New("substrate: invalid parameters")
)

// Substrate is the read-only field contract consumed by the guidance model.
// Coordinates are x = column, y = row.
type Substrate interface {
	Rows() int
	Cols() int
	Ligand(x, y int) float64
	Receptor(x, y int) float64
	At(x, y int) (ligand, receptor float64)
}

// Grid is a dense Substrate backed by two gonum matrices of identical shape.
type Grid struct {
	rows, cols int
	ligands    *mat.Dense
	receptors  *mat.Dense
}

// NewGrid allocates a zeroed rows×cols grid.
func NewGrid(rows, cols int) *Grid {
	return &Grid{
		rows:      rows,
		cols:      cols,
		ligands:   mat.NewDense(rows, cols, nil),
		receptors: mat.NewDense(rows, cols, nil),
	}
}

func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }

func (g *Grid) Ligand(x, y int) float64   { return g.ligands.At(y, x) }
func (g *Grid) Receptor(x, y int) float64 { return g.receptors.At(y, x) }

func (g *Grid) At(x, y int) (float64, float64) {
	return g.ligands.At(y, x), g.receptors.At(y, x)
}

// Set writes both concentrations at (x, y).
func (g *Grid) Set(x, y int, ligand, receptor float64) {
	g.ligands.Set(y, x, ligand)
	g.receptors.Set(y, x, receptor)
}

// Totals returns the summed ligand and receptor concentration.
func (g *Grid) Totals() (float64, float64) {
	return mat.Sum(g.ligands), mat.Sum(g.receptors)
}

// Params describes the patterned region. The grid is padded by Offset cells
// on every side, so its full size is (Rows+2·Offset)×(Cols+2·Offset).
type Params struct {
	Rows   int
	Cols   int
	Offset int
	First  float64
	Second float64
}

func (p Params) validate() error {
	if p.Rows <= 0 || p.Cols <= 0 {
		return fmt.Errorf("%w: grid %dx%d", ErrInvalidParams, p.Rows, p.Cols)
	}
	if p.Offset < 0 {
		return fmt.Errorf("%w: offset %d", ErrInvalidParams, p.Offset)
	}
	if p.First < 0 || p.Second < 0 {
		return fmt.Errorf("%w: bounds (%g, %g) must be non-negative", ErrInvalidParams, p.First, p.Second)
	}
	return nil
}

// New builds and fills a substrate of the named type. An unknown name fails
// before any grid is allocated.
func New(kind string, p Params) (*Grid, error) {
	pat, ok := patterns[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, kind)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	g := NewGrid(p.Rows+2*p.Offset, p.Cols+2*p.Offset)
	pat.Paint(g, regionOf(p), p.First, p.Second)
	return g, nil
}
