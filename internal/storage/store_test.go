package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/axonguide/internal/config"
	"github.com/san-kum/axonguide/internal/geom"
	"github.com/san-kum/axonguide/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		StepsTaken:     2,
		FFCoefficients: []float64{0.1, 0.2},
		Cones: []sim.ConeResult{
			{
				ID:         0,
				Origin:     geom.Point{X: 3, Y: 3},
				Trajectory: []geom.Point{{X: 4, Y: 3}, {X: 5, Y: 2}},
				Potentials: []float64{0.5, 0.25},
			},
			{
				ID:         1,
				Origin:     geom.Point{X: 3, Y: 9},
				Trajectory: []geom.Point{{X: 3, Y: 10}, {X: 4, Y: 10}},
				Potentials: []float64{1.5, 1.125},
			},
		},
		Metrics: map[string]float64{"mean_potential": 0.84375},
	}
}

func fixedStore(t *testing.T, ts time.Time) *Store {
	t.Helper()
	st := New(t.TempDir())
	st.now = func() time.Time { return ts }
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	return st
}

func TestStoreSaveLoad(t *testing.T) {
	st := fixedStore(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	cfg := config.DefaultConfig()
	cfg.Seed = 42
	cfg.Substrate.Type = "wedges"

	meta, err := st.Save(cfg, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if meta.ID == "" {
		t.Fatal("expected non-empty run id")
	}

	got, err := st.Load(meta.ID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Substrate != "wedges" || got.Seed != 42 || got.Steps != 2 || got.Cones != 2 {
		t.Errorf("unexpected metadata: %+v", got)
	}
	if got.Adaptation != "none" {
		t.Errorf("adaptation = %q, want none", got.Adaptation)
	}
	if got.Metrics["mean_potential"] != 0.84375 {
		t.Errorf("metrics = %v", got.Metrics)
	}

	loaded, err := st.LoadConfig(meta.ID)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("config mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestStoreLoadTrajectories(t *testing.T) {
	st := fixedStore(t, time.Now())
	res := testResult()
	meta, err := st.Save(config.DefaultConfig(), res)
	if err != nil {
		t.Fatal(err)
	}

	tracks, err := st.LoadTrajectories(meta.ID)
	if err != nil {
		t.Fatalf("load trajectories failed: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("got %d tracks, want 2", len(tracks))
	}
	for i, tr := range tracks {
		want := res.Cones[i]
		if tr.ConeID != want.ID {
			t.Errorf("track %d: cone %d", i, tr.ConeID)
		}
		if diff := cmp.Diff(want.Trajectory, tr.Points); diff != "" {
			t.Errorf("cone %d points (-want +got):\n%s", want.ID, diff)
		}
		if diff := cmp.Diff(want.Potentials, tr.Potentials); diff != "" {
			t.Errorf("cone %d potentials (-want +got):\n%s", want.ID, diff)
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("empty store: %v, %v", runs, err)
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 2; i >= 0; i-- {
		st.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		if _, err := st.Save(config.DefaultConfig(), testResult()); err != nil {
			t.Fatal(err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if !runs[i-1].Timestamp.Before(runs[i].Timestamp) {
			t.Errorf("runs not ordered by time: %v then %v", runs[i-1].Timestamp, runs[i].Timestamp)
		}
	}
}

func TestStoreNotFound(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Load error = %v", err)
	}
	if _, err := st.LoadTrajectories("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("LoadTrajectories error = %v", err)
	}
	if _, err := st.LoadConfig("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("LoadConfig error = %v", err)
	}
}

func TestStoreCopy(t *testing.T) {
	st := fixedStore(t, time.Now())
	meta, err := st.Save(config.DefaultConfig(), testResult())
	if err != nil {
		t.Fatal(err)
	}

	var js bytes.Buffer
	if err := st.CopyResult(&js, meta.ID); err != nil {
		t.Fatal(err)
	}
	var data ExportData
	if err := json.Unmarshal(js.Bytes(), &data); err != nil {
		t.Fatalf("stored result is not JSON: %v", err)
	}
	if data.Steps != 2 {
		t.Errorf("steps = %d, want 2", data.Steps)
	}

	var csv bytes.Buffer
	if err := st.CopyTrajectories(&csv, meta.ID); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(csv.String(), "step,cone,x,y,potential\n") {
		t.Errorf("unexpected csv:\n%s", csv.String())
	}

	if err := st.CopyResult(&js, "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("missing run error = %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, config.DefaultConfig(), testResult()); err != nil {
		t.Fatal(err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if data.Substrate != "continuous" || data.Steps != 2 || len(data.Cones) != 2 {
		t.Errorf("unexpected export: %+v", data)
	}
	if data.Cones[1].Trajectory[1] != [2]int{4, 10} {
		t.Errorf("trajectory = %v", data.Cones[1].Trajectory)
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportCSV(&buf, testResult()); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"step,cone,x,y,potential",
		"0,0,4,3,0.500000",
		"0,1,3,10,1.500000",
		"1,0,5,2,0.250000",
		"1,1,4,10,1.125000",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}
