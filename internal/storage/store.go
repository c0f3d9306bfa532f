// Package storage keeps CLI runs on disk. Each run is a directory holding
// metadata.json, the config.yaml it was built from and a long-format
// trajectories.csv; an optional SQLite catalog indexes runs for queries.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/axonguide/internal/config"
	"github.com/san-kum/axonguide/internal/geom"
	"github.com/san-kum/axonguide/internal/sim"
)

// ErrRunNotFound is returned when a run directory does not exist.
var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile     = "metadata.json"
	configFile       = "config.yaml"
	trajectoriesFile = "trajectories.csv"
	resultFile       = "result.json"
)

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID         string             `json:"id"`
	Substrate  string             `json:"substrate"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Steps      int                `json:"steps"`
	Cones      int                `json:"cones"`
	ConeSize   int                `json:"cone_size"`
	Rows       int                `json:"rows"`
	Cols       int                `json:"cols"`
	Adaptation string             `json:"adaptation"`
	Metrics    map[string]float64 `json:"metrics"`
}

// NewMetadata summarises a finished run.
func NewMetadata(id string, ts time.Time, cfg *config.Config, result *sim.Result) RunMetadata {
	adaptation := "none"
	if cfg.Adaptation.Enabled {
		adaptation = cfg.Adaptation.Strategy
	}
	return RunMetadata{
		ID:         id,
		Substrate:  cfg.Substrate.Type,
		Timestamp:  ts,
		Seed:       cfg.Seed,
		Steps:      result.StepsTaken,
		Cones:      len(result.Cones),
		ConeSize:   cfg.Cones.Size,
		Rows:       cfg.Grid.Rows,
		Cols:       cfg.Grid.Cols,
		Adaptation: adaptation,
		Metrics:    result.Metrics,
	}
}

// Save writes a run directory and returns its ID.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (RunMetadata, error) {
	ts := s.now()
	runID := fmt.Sprintf("%s_%d_%d", cfg.Substrate.Type, cfg.Seed, ts.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return RunMetadata{}, err
	}

	meta := NewMetadata(runID, ts, cfg, result)
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return RunMetadata{}, err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return RunMetadata{}, err
	}

	if err := writeWith(filepath.Join(runDir, resultFile), func(w io.Writer) error {
		return ExportJSON(w, cfg, result)
	}); err != nil {
		return RunMetadata{}, err
	}
	if err := writeWith(filepath.Join(runDir, trajectoriesFile), func(w io.Writer) error {
		return ExportCSV(w, result)
	}); err != nil {
		return RunMetadata{}, err
	}
	return meta, nil
}

func writeWith(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := write(f); err != nil {
		return err
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	return writeWith(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadConfig reads back the config a run was built from.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	path := filepath.Join(s.baseDir, runID, configFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return config.Load(path)
}

// Track is one cone's recorded path.
type Track struct {
	ConeID     int
	Points     []geom.Point
	Potentials []float64
}

// LoadTrajectories reads the trajectory table of a run, one Track per cone
// ordered by cone ID.
func (s *Store) LoadTrajectories(runID string) ([]Track, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoriesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(csvHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Track{}, nil
	}

	byID := make(map[int]*Track)
	for i, record := range records[1:] {
		id, err1 := strconv.Atoi(record[1])
		x, err2 := strconv.Atoi(record[2])
		y, err3 := strconv.Atoi(record[3])
		p, err4 := strconv.ParseFloat(record[4], 64)
		if err := errors.Join(err1, err2, err3, err4); err != nil {
			return nil, fmt.Errorf("storage: %s line %d: %w", trajectoriesFile, i+2, err)
		}
		tr, ok := byID[id]
		if !ok {
			tr = &Track{ConeID: id}
			byID[id] = tr
		}
		tr.Points = append(tr.Points, geom.Point{X: x, Y: y})
		tr.Potentials = append(tr.Potentials, p)
	}

	tracks := make([]Track, 0, len(byID))
	for _, tr := range byID {
		tracks = append(tracks, *tr)
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i].ConeID < tracks[j].ConeID })
	return tracks, nil
}

// CopyResult streams the stored JSON export of a run to w.
func (s *Store) CopyResult(w io.Writer, runID string) error {
	return s.copyFile(w, runID, resultFile)
}

// CopyTrajectories streams the stored trajectory table of a run to w.
func (s *Store) CopyTrajectories(w io.Writer, runID string) error {
	return s.copyFile(w, runID, trajectoriesFile)
}

func (s *Store) copyFile(w io.Writer, runID, name string) error {
	f, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
