package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/axonguide/internal/cone"
	"github.com/san-kum/axonguide/internal/geom"
	"github.com/san-kum/axonguide/internal/potential"
	"github.com/san-kum/axonguide/internal/sim"
)

func record(potentials ...float64) sim.StepRecord {
	rec := sim.StepRecord{Readings: make([]potential.Reading, len(potentials))}
	for i, p := range potentials {
		rec.Readings[i].Potential = p
	}
	return rec
}

func TestMeanPotential(t *testing.T) {
	m := NewMeanPotential()
	if m.Value() != 0 {
		t.Errorf("empty value = %v, want 0", m.Value())
	}

	m.Observe(record(1, 3))
	m.Observe(record(2, 6))
	if got := m.Value(); got != 3 {
		t.Errorf("Value() = %v, want 3", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("Reset did not clear samples")
	}
}

func TestFinalPotential(t *testing.T) {
	f := NewFinalPotential()
	f.Observe(record(10, 10))
	f.Observe(record(1, 2))
	if got := f.Value(); got != 1.5 {
		t.Errorf("Value() = %v, want 1.5", got)
	}
}

func TestMeanDisplacement(t *testing.T) {
	a, _ := cone.New(0, geom.Point{X: 0, Y: 0}, 1, 0.5, 0.5)
	b, _ := cone.New(1, geom.Point{X: 5, Y: 5}, 1, 0.5, 0.5)
	a.NewPos = geom.Point{X: 3, Y: 4}
	a.Record()

	d := NewMeanDisplacement()
	d.Observe(sim.StepRecord{Cones: []*cone.GrowthCone{a, b}})
	if got := d.Value(); got != 2.5 {
		t.Errorf("Value() = %v, want 2.5", got)
	}
}

func TestRanks(t *testing.T) {
	got := Ranks([]float64{10, 30, 20, 20})
	want := []float64{1, 4, 2.5, 2.5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Ranks = %v, want %v", got, want)
		}
	}
}

func TestSpearman(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
		want float64
	}{
		{"monotone increasing", []float64{1, 2, 3, 4}, []float64{10, 20, 35, 80}, 1},
		{"monotone decreasing", []float64{1, 2, 3, 4}, []float64{9, 7, 3, 1}, -1},
		{"constant", []float64{1, 2, 3}, []float64{5, 5, 5}, 0},
		{"length mismatch", []float64{1, 2}, []float64{1}, 0},
		{"single", []float64{1}, []float64{1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Spearman(tt.x, tt.y); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Spearman = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTopographicOrder(t *testing.T) {
	var cones []*cone.GrowthCone
	for i, x := range []int{12, 9, 4, 1} {
		gc, _ := cone.New(i, geom.Point{X: 0, Y: i}, 1, 0.5, 0.5)
		gc.NewPos = geom.Point{X: x, Y: i}
		gc.Record()
		cones = append(cones, gc)
	}

	o := NewTopographicOrder()
	o.Observe(sim.StepRecord{Cones: cones})
	if got := o.Value(); math.Abs(got+1) > 1e-12 {
		t.Errorf("Value() = %v, want -1", got)
	}
}

func TestMetricNames(t *testing.T) {
	want := map[string]bool{
		"mean_potential":    true,
		"final_potential":   true,
		"mean_displacement": true,
		"topographic_order": true,
	}
	all := []sim.Metric{NewMeanPotential(), NewFinalPotential(), NewMeanDisplacement(), NewTopographicOrder()}
	for _, m := range all {
		if !want[m.Name()] {
			t.Errorf("unexpected metric %q", m.Name())
		}
		delete(want, m.Name())
	}
	if len(want) != 0 {
		t.Errorf("missing metrics: %v", want)
	}
}
