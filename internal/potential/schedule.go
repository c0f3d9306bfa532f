package potential

import "math"

const (
	// DefaultHeight is the saturation level of the FF coefficient.
	DefaultHeight = 1.0

	stepLead     = 0.01
	minSigmoidIn = 1e-10
)

// FFCoefficient ramps fiber-fiber interaction strength over a run of
// numSteps. The step is advanced by 1% of the run so a shift of 100
// saturates almost immediately; the result lies in (0, height] and does not
// decrease with step for positive steepness and shift.
func FFCoefficient(step, numSteps int, steepness, shift, height float64) float64 {
	n := float64(numSteps)
	s := float64(step) + stepLead*n
	ratio := s / n
	adj := math.Max(math.Pow(ratio*shift, steepness), minSigmoidIn)
	return height * (1 - math.Exp(-adj))
}

// Schedule binds FFCoefficient parameters for one run.
type Schedule struct {
	NumSteps  int
	Steepness float64
	Shift     float64
	Height    float64
}

// At returns the FF coefficient for step.
func (s Schedule) At(step int) float64 {
	return FFCoefficient(step, s.NumSteps, s.Steepness, s.Shift, s.Height)
}

// Series returns the coefficient for every step of the run.
func (s Schedule) Series() []float64 {
	out := make([]float64, s.NumSteps)
	for i := range out {
		out[i] = s.At(i)
	}
	return out
}
