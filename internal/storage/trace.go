package storage

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/san-kum/axonguide/internal/sim"
)

// TraceWriter is a sim.Observer that writes one JSON line per step with
// the committed position and reading of every cone. It is safe for
// concurrent use; write errors are kept and reported by Err.
type TraceWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
	err error
}

type traceCone struct {
	ID        int     `json:"id"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Ligand    float64 `json:"ligand"`
	Receptor  float64 `json:"receptor"`
	Forward   float64 `json:"forward"`
	Reverse   float64 `json:"reverse"`
	Potential float64 `json:"potential"`
}

type traceLine struct {
	Step   int         `json:"step"`
	FFCoef float64     `json:"ff_coef"`
	Cones  []traceCone `json:"cones"`
}

func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{enc: json.NewEncoder(w)}
}

func (t *TraceWriter) OnStep(rec sim.StepRecord) {
	line := traceLine{Step: rec.Step, FFCoef: rec.FFCoef, Cones: make([]traceCone, len(rec.Cones))}
	for i, gc := range rec.Cones {
		tc := traceCone{ID: gc.ID, X: gc.Pos.X, Y: gc.Pos.Y, Ligand: gc.Ligand, Receptor: gc.Receptor}
		if i < len(rec.Readings) {
			tc.Forward = rec.Readings[i].Forward
			tc.Reverse = rec.Readings[i].Reverse
			tc.Potential = rec.Readings[i].Potential
		}
		line.Cones[i] = tc
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	t.err = t.enc.Encode(line)
}

// Err returns the first write error, if any.
func (t *TraceWriter) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}
