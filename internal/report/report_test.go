package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/axonguide/internal/geom"
	"github.com/san-kum/axonguide/internal/optim"
	"github.com/san-kum/axonguide/internal/sim"
	"github.com/san-kum/axonguide/internal/storage"
)

func TestPick(t *testing.T) {
	tests := []struct {
		n, k int
		want []int
	}{
		{3, 6, []int{0, 1, 2}},
		{10, 6, []int{0, 1, 3, 5, 7, 9}},
		{7, 2, []int{0, 6}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, pick(tt.n, tt.k)); diff != "" {
			t.Errorf("pick(%d, %d) mismatch:\n%s", tt.n, tt.k, diff)
		}
	}
}

func TestSeries(t *testing.T) {
	if Series(nil, "empty") != "" {
		t.Error("empty series should render nothing")
	}
	out := Series([]float64{0, 1, 2, 1, 0}, "potential")
	if !strings.Contains(out, "potential") {
		t.Errorf("caption missing:\n%s", out)
	}
}

func TestConePotentials(t *testing.T) {
	res := &sim.Result{
		StepsTaken: 3,
		Cones: []sim.ConeResult{
			{ID: 0, Potentials: []float64{1, 0.5, 0.25}},
			{ID: 1, Potentials: []float64{0.2, 0.4, 0.8}},
		},
	}
	out := ConePotentials(res)
	if !strings.Contains(out, "cone 1") {
		t.Errorf("legend missing:\n%s", out)
	}
	if ConePotentials(&sim.Result{}) != "" {
		t.Error("empty result should render nothing")
	}
}

func TestRuns(t *testing.T) {
	var buf bytes.Buffer
	runs := []storage.RunMetadata{{
		ID:         "continuous_1_1",
		Substrate:  "continuous",
		Timestamp:  time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC),
		Seed:       1,
		Steps:      400,
		Cones:      10,
		Adaptation: "none",
	}}
	if err := Runs(&buf, runs); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"SUBSTRATE", "continuous_1_1", "2024-02-03 04:05:06", "400"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMetrics_Sorted(t *testing.T) {
	var buf bytes.Buffer
	if err := Metrics(&buf, map[string]float64{"b": 2, "a": 1}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "a") || !strings.Contains(lines[1], "2.000000") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestCones(t *testing.T) {
	var buf bytes.Buffer
	res := &sim.Result{Cones: []sim.ConeResult{{
		ID:         4,
		Origin:     geom.Point{X: 0, Y: 0},
		Trajectory: []geom.Point{{X: 3, Y: 4}},
	}}}
	if err := Cones(&buf, res); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "(3,4)") || !strings.Contains(buf.String(), "5.00") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestTrials(t *testing.T) {
	var buf bytes.Buffer
	trials := []optim.Trial{
		{Params: map[string]float64{"movement.sigma": 0.1}, Value: 0.9},
		{Params: map[string]float64{"movement.sigma": 0.5}, Value: 0.4},
	}
	if err := Trials(&buf, []string{"movement.sigma"}, trials, 1); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "0.900000") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestEnsemble(t *testing.T) {
	var buf bytes.Buffer
	results := []*sim.Result{
		{Metrics: map[string]float64{"m": 1}},
		{Metrics: map[string]float64{"m": 3}},
		nil,
	}
	if err := Ensemble(&buf, results); err != nil {
		t.Fatal(err)
	}
	// mean 2, sample std sqrt(2)
	if !strings.Contains(buf.String(), "2.000000") || !strings.Contains(buf.String(), "1.414214") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}
