package substrate

import (
	"errors"
	"math"
	"testing"
)

func defaultParams() Params {
	return Params{Rows: 20, Cols: 30, Offset: 2, First: 0.01, Second: 0.99}
}

func TestNewUnknownType(t *testing.T) {
	g, err := New("spiral", defaultParams())
	if !errors.Is(err, ErrUnknownPattern) {
		t.Fatalf("expected ErrUnknownPattern, got %v", err)
	}
	if g != nil {
		t.Error("expected no grid for unknown type")
	}
}

func TestNewInvalidParams(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"zero rows", Params{Rows: 0, Cols: 10}},
		{"negative offset", Params{Rows: 10, Cols: 10, Offset: -1}},
		{"negative bound", Params{Rows: 10, Cols: 10, First: -0.1, Second: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New("continuous", tt.p); !errors.Is(err, ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams, got %v", err)
			}
		})
	}
}

func TestAllPatternsNonNegative(t *testing.T) {
	p := defaultParams()
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			g, err := New(name, p)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if g.Rows() != p.Rows+2*p.Offset || g.Cols() != p.Cols+2*p.Offset {
				t.Fatalf("dims %dx%d", g.Rows(), g.Cols())
			}
			for y := 0; y < g.Rows(); y++ {
				for x := 0; x < g.Cols(); x++ {
					lig, rec := g.At(x, y)
					if lig < 0 || rec < 0 || math.IsNaN(lig) || math.IsNaN(rec) {
						t.Fatalf("bad value at (%d,%d): %v %v", x, y, lig, rec)
					}
				}
			}
			lt, rt := g.Totals()
			if lt == 0 && rt == 0 {
				t.Error("pattern painted nothing")
			}
		})
	}
}

func TestNamesCoversFactory(t *testing.T) {
	want := []string{"continuous", "gap_bb", "gap_br", "gap_inv", "gap_rb", "gap_rr", "stripe_duo", "stripe_fwd", "stripe_rew", "wedges"}
	got := Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestContinuousGradient(t *testing.T) {
	p := defaultParams()
	g, err := New("continuous", p)
	if err != nil {
		t.Fatal(err)
	}
	y := p.Offset + 5
	left, right := p.Offset, p.Offset+p.Cols-1

	if lig := g.Ligand(left, y); math.Abs(lig-p.First) > 1e-12 {
		t.Errorf("left ligand = %v, want %v", lig, p.First)
	}
	if lig := g.Ligand(right, y); math.Abs(lig-p.Second) > 1e-12 {
		t.Errorf("right ligand = %v, want %v", lig, p.Second)
	}
	if rec := g.Receptor(left, y); math.Abs(rec-p.Second) > 1e-12 {
		t.Errorf("left receptor = %v, want %v", rec, p.Second)
	}
	if lig, rec := g.At(0, 0); lig != 0 || rec != 0 {
		t.Errorf("margin should be empty, got %v %v", lig, rec)
	}
}

func TestGapIsEmpty(t *testing.T) {
	p := defaultParams()
	g, err := New("gap_rr", p)
	if err != nil {
		t.Fatal(err)
	}
	mid := p.Offset + p.Cols/2
	lig, rec := g.At(mid, p.Offset+3)
	if lig != p.First || rec != p.First {
		t.Errorf("gap cell = (%v, %v), want both %v", lig, rec, p.First)
	}
}

func TestGapInvertedSwapsSecondBlock(t *testing.T) {
	p := defaultParams()
	rr, _ := New("gap_rr", p)
	inv, _ := New("gap_inv", p)
	x, y := p.Offset+p.Cols-1, p.Offset
	l1, r1 := rr.At(x, y)
	l2, r2 := inv.At(x, y)
	if l1 != r2 || r1 != l2 {
		t.Errorf("expected swapped levels, got (%v,%v) vs (%v,%v)", l1, r1, l2, r2)
	}
}
