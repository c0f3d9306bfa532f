package report

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/axonguide/internal/optim"
	"github.com/san-kum/axonguide/internal/sim"
	"github.com/san-kum/axonguide/internal/storage"
)

const timeFormat = "2006-01-02 15:04:05"

// Runs writes the run list table.
func Runs(w io.Writer, runs []storage.RunMetadata) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSUBSTRATE\tTIME\tSEED\tSTEPS\tCONES\tADAPT")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			run.ID,
			run.Substrate,
			run.Timestamp.Format(timeFormat),
			run.Seed,
			run.Steps,
			run.Cones,
			run.Adaptation,
		)
	}
	return tw.Flush()
}

// Metrics writes metrics sorted by name.
func Metrics(w io.Writer, metrics map[string]float64) error {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(tw, "  %s\t%.6f\n", name, metrics[name])
	}
	return tw.Flush()
}

// Cones writes the per-cone end state of a run.
func Cones(w io.Writer, res *sim.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CONE\tSTART\tEND\tDISP\tLIGAND\tRECEPTOR\tPOTENTIAL")
	for _, c := range res.Cones {
		end := c.End()
		fmt.Fprintf(tw, "%d\t(%d,%d)\t(%d,%d)\t%.2f\t%.4f\t%.4f\t%.6f\n",
			c.ID,
			c.Origin.X, c.Origin.Y,
			end.X, end.Y,
			c.Displacement(),
			c.Ligand,
			c.Receptor,
			c.Final.Potential,
		)
	}
	return tw.Flush()
}

// Trials writes the best n sweep trials.
func Trials(w io.Writer, params []string, trials []optim.Trial, n int) error {
	if n <= 0 || n > len(trials) {
		n = len(trials)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "RANK")
	for _, p := range params {
		fmt.Fprintf(tw, "\t%s", p)
	}
	fmt.Fprintln(tw, "\tVALUE")
	for i, tr := range trials[:n] {
		fmt.Fprintf(tw, "%d", i+1)
		for _, p := range params {
			fmt.Fprintf(tw, "\t%g", tr.Params[p])
		}
		fmt.Fprintf(tw, "\t%.6f\n", tr.Value)
	}
	return tw.Flush()
}

// Ensemble writes mean and standard deviation of every metric across runs.
func Ensemble(w io.Writer, results []*sim.Result) error {
	values := make(map[string][]float64)
	for _, r := range results {
		if r == nil {
			continue
		}
		for name, v := range r.Metrics {
			values[name] = append(values[name], v)
		}
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tMEAN\tSTD\tN")
	for _, name := range names {
		vs := values[name]
		mean, std := stat.MeanStdDev(vs, nil)
		if len(vs) < 2 {
			std = 0
		}
		fmt.Fprintf(tw, "%s\t%.6f\t%.6f\t%d\n", name, mean, std, len(vs))
	}
	return tw.Flush()
}
