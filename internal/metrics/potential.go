package metrics

import "github.com/san-kum/axonguide/internal/sim"

// MeanPotential averages the guidance potential over every cone and step.
type MeanPotential struct {
	name    string
	samples int
	total   float64
}

func NewMeanPotential() *MeanPotential {
	return &MeanPotential{name: "mean_potential"}
}

func (m *MeanPotential) Name() string { return m.name }

func (m *MeanPotential) Observe(rec sim.StepRecord) {
	for _, r := range rec.Readings {
		m.total += r.Potential
		m.samples++
	}
}

func (m *MeanPotential) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanPotential) Reset() {
	m.total = 0
	m.samples = 0
}

// FinalPotential is the population mean potential of the last observed step.
type FinalPotential struct {
	name string
	last float64
}

func NewFinalPotential() *FinalPotential {
	return &FinalPotential{name: "final_potential"}
}

func (f *FinalPotential) Name() string { return f.name }

func (f *FinalPotential) Observe(rec sim.StepRecord) {
	if len(rec.Readings) == 0 {
		return
	}
	var sum float64
	for _, r := range rec.Readings {
		sum += r.Potential
	}
	f.last = sum / float64(len(rec.Readings))
}

func (f *FinalPotential) Value() float64 { return f.last }
func (f *FinalPotential) Reset()         { f.last = 0 }
