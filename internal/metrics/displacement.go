package metrics

import (
	"github.com/san-kum/axonguide/internal/geom"
	"github.com/san-kum/axonguide/internal/sim"
)

// MeanDisplacement is the mean straight-line distance of the cones from
// their origins after the last observed step.
type MeanDisplacement struct {
	name string
	last float64
}

func NewMeanDisplacement() *MeanDisplacement {
	return &MeanDisplacement{name: "mean_displacement"}
}

func (d *MeanDisplacement) Name() string { return d.name }

func (d *MeanDisplacement) Observe(rec sim.StepRecord) {
	if len(rec.Cones) == 0 {
		return
	}
	var sum float64
	for _, gc := range rec.Cones {
		sum += geom.Distance(gc.Origin, gc.Pos)
	}
	d.last = sum / float64(len(rec.Cones))
}

func (d *MeanDisplacement) Value() float64 { return d.last }
func (d *MeanDisplacement) Reset()         { d.last = 0 }
