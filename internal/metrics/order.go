package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/axonguide/internal/sim"
)

// TopographicOrder is the Spearman rank correlation between cone IDs and
// current x positions. Populations are built with receptor levels rising
// with ID, so a perfectly ordered map gives ±1.
type TopographicOrder struct {
	name string
	last float64
}

func NewTopographicOrder() *TopographicOrder {
	return &TopographicOrder{name: "topographic_order"}
}

func (o *TopographicOrder) Name() string { return o.name }

func (o *TopographicOrder) Observe(rec sim.StepRecord) {
	if len(rec.Cones) < 2 {
		return
	}
	levels := make([]float64, len(rec.Cones))
	xs := make([]float64, len(rec.Cones))
	for i, gc := range rec.Cones {
		levels[i] = float64(gc.ID)
		xs[i] = float64(gc.Pos.X)
	}
	o.last = Spearman(levels, xs)
}

func (o *TopographicOrder) Value() float64 { return o.last }
func (o *TopographicOrder) Reset()         { o.last = 0 }

// Spearman returns the rank correlation of x and y, averaging tied ranks.
// Constant input has no defined correlation and yields 0.
func Spearman(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	rho := stat.Correlation(Ranks(x), Ranks(y), nil)
	if math.IsNaN(rho) {
		return 0
	}
	return rho
}

// Ranks assigns 1-based ranks to v, giving tied values their mean rank.
func Ranks(v []float64) []float64 {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return v[idx[a]] < v[idx[b]] })

	ranks := make([]float64, len(v))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && v[idx[j+1]] == v[idx[i]] {
			j++
		}
		r := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = r
		}
		i = j + 1
	}
	return ranks
}
