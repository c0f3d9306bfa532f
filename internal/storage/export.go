package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/axonguide/internal/config"
	"github.com/san-kum/axonguide/internal/sim"
)

var csvHeader = []string{"step", "cone", "x", "y", "potential"}

type ConeExport struct {
	ID              int       `json:"id"`
	Origin          [2]int    `json:"origin"`
	Trajectory      [][2]int  `json:"trajectory"`
	Potentials      []float64 `json:"potentials"`
	InitialLigand   float64   `json:"initial_ligand"`
	InitialReceptor float64   `json:"initial_receptor"`
	Ligand          float64   `json:"ligand"`
	Receptor        float64   `json:"receptor"`
}

type ExportData struct {
	Substrate      string             `json:"substrate"`
	Seed           int64              `json:"seed"`
	Steps          int                `json:"steps"`
	Adaptation     bool               `json:"adaptation"`
	FFCoefficients []float64          `json:"ff_coefficients"`
	Cones          []ConeExport       `json:"cones"`
	Metrics        map[string]float64 `json:"metrics"`
}

func NewExportData(cfg *config.Config, result *sim.Result) ExportData {
	data := ExportData{
		Substrate:      cfg.Substrate.Type,
		Seed:           cfg.Seed,
		Steps:          result.StepsTaken,
		Adaptation:     cfg.Adaptation.Enabled,
		FFCoefficients: result.FFCoefficients,
		Cones:          make([]ConeExport, len(result.Cones)),
		Metrics:        result.Metrics,
	}
	for i, c := range result.Cones {
		traj := make([][2]int, len(c.Trajectory))
		for j, p := range c.Trajectory {
			traj[j] = [2]int{p.X, p.Y}
		}
		data.Cones[i] = ConeExport{
			ID:              c.ID,
			Origin:          [2]int{c.Origin.X, c.Origin.Y},
			Trajectory:      traj,
			Potentials:      c.Potentials,
			InitialLigand:   c.InitialLigand,
			InitialReceptor: c.InitialReceptor,
			Ligand:          c.Ligand,
			Receptor:        c.Receptor,
		}
	}
	return data
}

// ExportJSON writes the full run as indented JSON.
func ExportJSON(w io.Writer, cfg *config.Config, result *sim.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExportData(cfg, result))
}

// ExportCSV writes one row per cone and step.
func ExportCSV(w io.Writer, result *sim.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for step := 0; step < result.StepsTaken; step++ {
		for _, c := range result.Cones {
			if step >= len(c.Trajectory) {
				continue
			}
			p := c.Trajectory[step]
			var pot float64
			if step < len(c.Potentials) {
				pot = c.Potentials[step]
			}
			row := []string{
				strconv.Itoa(step),
				strconv.Itoa(c.ID),
				strconv.Itoa(p.X),
				strconv.Itoa(p.Y),
				strconv.FormatFloat(pot, 'f', 6, 64),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
