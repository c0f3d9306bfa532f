package report

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/axonguide/internal/sim"
)

const (
	chartHeight = 10
	chartWidth  = 80
	// series beyond this are dropped from multi-cone charts
	maxSeries = 6
)

// Series plots one series with a caption.
func Series(data []float64, caption string) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(chartHeight),
		asciigraph.Width(chartWidth),
		asciigraph.Caption(caption),
	)
}

// ConePotentials plots the potential of up to maxSeries cones, evenly
// picked across the population, in one chart.
func ConePotentials(res *sim.Result) string {
	if len(res.Cones) == 0 || res.StepsTaken == 0 {
		return ""
	}
	picked := pick(len(res.Cones), maxSeries)
	data := make([][]float64, 0, len(picked))
	colors := []asciigraph.AnsiColor{
		asciigraph.Red, asciigraph.Yellow, asciigraph.Green,
		asciigraph.Cyan, asciigraph.Blue, asciigraph.Magenta,
	}
	legends := make([]string, 0, len(picked))
	for _, i := range picked {
		c := res.Cones[i]
		if len(c.Potentials) == 0 {
			continue
		}
		data = append(data, c.Potentials)
		legends = append(legends, fmt.Sprintf("cone %d", c.ID))
	}
	if len(data) == 0 {
		return ""
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(chartHeight),
		asciigraph.Width(chartWidth),
		asciigraph.SeriesColors(colors[:len(data)]...),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Caption("guidance potential per cone"),
	)
}

// pick returns up to k indices spread over [0, n).
func pick(n, k int) []int {
	if n <= k {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := make([]int, k)
	for i := range out {
		out[i] = i * (n - 1) / (k - 1)
	}
	return out
}
