package substrate

import "sort"

// Pattern fills the patterned region of a grid. lo and hi are the two
// configured bounds; how they are used depends on the pattern.
type Pattern interface {
	Name() string
	Paint(g *Grid, r Region, lo, hi float64)
}

// Region is the patterned interior of a padded grid.
type Region struct {
	X0, Y0     int
	Rows, Cols int
}

func regionOf(p Params) Region {
	return Region{X0: p.Offset, Y0: p.Offset, Rows: p.Rows, Cols: p.Cols}
}

// each calls fn for every interior cell with its normalised coordinates
// u (along x) and v (along y), both in [0, 1].
func (r Region) each(fn func(x, y int, u, v float64)) {
	for j := 0; j < r.Rows; j++ {
		v := norm(j, r.Rows)
		for i := 0; i < r.Cols; i++ {
			fn(r.X0+i, r.Y0+j, norm(i, r.Cols), v)
		}
	}
}

func norm(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

func lerp(lo, hi, t float64) float64 { return lo + (hi-lo)*t }

var patterns = map[string]Pattern{}

func register(p Pattern) { patterns[p.Name()] = p }

func init() {
	register(continuous{})
	register(wedges{})
	register(stripes{name: "stripe_fwd", ligand: true})
	register(stripes{name: "stripe_rew", receptor: true})
	register(stripes{name: "stripe_duo", ligand: true, receptor: true})
	register(gap{name: "gap_rr", first: blockGradient, second: blockGradient})
	register(gap{name: "gap_rb", first: blockGradient, second: blockPlateau})
	register(gap{name: "gap_br", first: blockPlateau, second: blockGradient})
	register(gap{name: "gap_bb", first: blockPlateau, second: blockPlateau})
	register(gap{name: "gap_inv", first: blockGradient, second: blockGradient, invertSecond: true})
}

// Names lists the registered substrate types in sorted order.
func Names() []string {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// continuous: ligand rises from lo to hi along x, receptor falls from hi to lo.
type continuous struct{}

func (continuous) Name() string { return "continuous" }

func (continuous) Paint(g *Grid, r Region, lo, hi float64) {
	r.each(func(x, y int, u, _ float64) {
		g.Set(x, y, lerp(lo, hi, u), lerp(lo, hi, 1-u))
	})
}

// wedges splits the rows into bands. Inside each band a ligand wedge
// widens along x while the complementary receptor wedge narrows, so the
// band-averaged ligand fraction grows linearly with x.
type wedges struct{}

const wedgeBands = 6

func (wedges) Name() string { return "wedges" }

func (wedges) Paint(g *Grid, r Region, lo, hi float64) {
	band := max(1, r.Rows/wedgeBands)
	r.each(func(x, y int, u, _ float64) {
		inBand := float64((y-r.Y0)%band) / float64(band)
		if inBand < u {
			g.Set(x, y, hi, lo)
		} else {
			g.Set(x, y, lo, hi)
		}
	})
}

// stripes run along x and alternate along y. Even stripes carry hi ligand
// (when ligand is set); odd stripes carry hi receptor when receptor is set
// together with ligand, otherwise the receptor-only variant uses even stripes.
type stripes struct {
	name     string
	ligand   bool
	receptor bool
}

const stripeCount = 10

func (s stripes) Name() string { return s.name }

func (s stripes) Paint(g *Grid, r Region, lo, hi float64) {
	width := max(1, r.Rows/stripeCount)
	r.each(func(x, y int, _, _ float64) {
		even := ((y-r.Y0)/width)%2 == 0
		lig, rec := lo, lo
		switch {
		case s.ligand && s.receptor:
			if even {
				lig = hi
			} else {
				rec = hi
			}
		case s.ligand && even:
			lig = hi
		case s.receptor && even:
			rec = hi
		}
		g.Set(x, y, lig, rec)
	})
}

type blockKind int

const (
	blockGradient blockKind = iota // continuous gradient over the block
	blockPlateau                   // constant at the block's mean gradient value
)

// gap divides x into thirds: a first block, an empty gap at lo, and a second
// block. Each block is either a gradient segment or a plateau.
type gap struct {
	name          string
	first, second blockKind
	invertSecond  bool
}

func (p gap) Name() string { return p.name }

func (p gap) Paint(g *Grid, r Region, lo, hi float64) {
	r.each(func(x, y int, u, _ float64) {
		var lig, rec float64
		switch {
		case u < 1.0/3:
			lig, rec = p.block(p.first, u, 0, 1.0/3, lo, hi)
		case u < 2.0/3:
			lig, rec = lo, lo
		default:
			lig, rec = p.block(p.second, u, 2.0/3, 1, lo, hi)
			if p.invertSecond {
				lig, rec = rec, lig
			}
		}
		g.Set(x, y, lig, rec)
	})
}

func (gap) block(kind blockKind, u, from, to, lo, hi float64) (float64, float64) {
	if kind == blockPlateau {
		u = (from + to) / 2
	}
	return lerp(lo, hi, u), lerp(lo, hi, 1-u)
}
