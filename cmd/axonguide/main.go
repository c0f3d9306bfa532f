package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/axonguide/internal/config"
	"github.com/san-kum/axonguide/internal/experiment"
	"github.com/san-kum/axonguide/internal/logging"
	"github.com/san-kum/axonguide/internal/optim"
	"github.com/san-kum/axonguide/internal/report"
	"github.com/san-kum/axonguide/internal/storage"
	"github.com/san-kum/axonguide/internal/substrate"
)

var (
	dataDir  string
	logLevel string
	// Run parameters
	configFile string
	preset     string
	seed       int64
	workers    int
	numCones   int
	coneSize   int
	numSteps   int
	sigma      float64
	force      float64
	adaptOn    bool
	strategy   string
	noFF       bool
	noFT       bool
	// Output
	traceFile string
	noSave    bool
	plot      bool
	// Listing
	listSubstrate string
	orderBy       string
	limit         int
	// Sweep / ensemble
	sweepParams []string
	metricName  string
	maximize    bool
	top         int
	numRuns     int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "axonguide",
		Short:        "growth cone axon guidance simulator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".axonguide", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (error|warn|info|debug|trace)")

	runCmd := &cobra.Command{
		Use:   "run [substrate]",
		Short: "run a simulation and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&traceFile, "trace", "", "write a JSONL step trace to this file")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not save the run")
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot cone potentials after the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}
	listCmd.Flags().StringVar(&listSubstrate, "substrate", "", "only runs on this substrate")
	listCmd.Flags().StringVar(&orderBy, "order-by", "", "rank runs by metric (descending)")
	listCmd.Flags().IntVar(&limit, "limit", 0, "maximum number of runs")

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "summarise a run and plot its mean potential",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).CopyResult(cmd.OutOrStdout(), args[0])
		},
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run trajectories to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).CopyTrajectories(cmd.OutOrStdout(), args[0])
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [substrate]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	substratesCmd := &cobra.Command{
		Use:   "substrates",
		Short: "list substrate patterns",
		RunE:  listSubstrates,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [substrate]",
		Short: "grid search over config parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "parameter range key=lo:hi:n or key=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&metricName, "metric", "topographic_order", "metric to rank by")
	sweepCmd.Flags().BoolVar(&maximize, "maximize", false, "rank by largest metric value")
	sweepCmd.Flags().IntVar(&top, "top", 10, "number of trials to show")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [substrate]",
		Short: "run seeds seed..seed+n-1 and summarise metrics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	addRunFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 8, "number of runs")

	benchCmd := &cobra.Command{
		Use:   "bench [substrate]",
		Short: "benchmark the step loop across worker counts",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchSimulation,
	}
	addRunFlags(benchCmd)

	rootCmd.AddCommand(runCmd, listCmd, showCmd, exportJSONCmd, exportCSVCmd, presetsCmd, substratesCmd, sweepCmd, ensembleCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().IntVar(&workers, "workers", 1, "concurrent cone updates")
	cmd.Flags().IntVar(&numCones, "cones", config.DefaultCones, "number of growth cones")
	cmd.Flags().IntVar(&coneSize, "size", config.DefaultConeSize, "growth cone size")
	cmd.Flags().IntVar(&numSteps, "steps", config.DefaultNumSteps, "number of steps")
	cmd.Flags().Float64Var(&sigma, "sigma", 0.3, "movement noise")
	cmd.Flags().Float64Var(&force, "force", 1.0, "gradient drift strength")
	cmd.Flags().BoolVar(&adaptOn, "adapt", false, "enable receptor/ligand adaptation")
	cmd.Flags().StringVar(&strategy, "strategy", "desensitization", "adaptation strategy")
	cmd.Flags().BoolVar(&noFF, "no-ff", false, "disable fiber-fiber interaction")
	cmd.Flags().BoolVar(&noFT, "no-ft", false, "disable fiber-target interaction")
}

// resolveConfig layers defaults, preset, config file and changed flags, in
// that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	kind := cfg.Substrate.Type
	if len(args) > 0 {
		kind = args[0]
	}

	if preset != "" {
		p := config.GetPreset(kind, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(kind))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.LoadOver(cfg, configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if len(args) > 0 {
		cfg.Substrate.Type = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("cones") {
		cfg.Cones.Count = numCones
	}
	if flags.Changed("size") {
		cfg.Cones.Size = coneSize
	}
	if flags.Changed("steps") {
		cfg.Movement.NumSteps = numSteps
	}
	if flags.Changed("sigma") {
		cfg.Movement.Sigma = sigma
	}
	if flags.Changed("force") {
		cfg.Movement.Force = force
	}
	if flags.Changed("adapt") {
		cfg.Adaptation.Enabled = adaptOn
	}
	if flags.Changed("strategy") {
		cfg.Adaptation.Strategy = strategy
	}
	if noFF {
		cfg.Signals.FF = false
	}
	if noFT {
		cfg.Signals.FT = false
	}
	if cmd.Flags().Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.LogLevel, os.Stderr)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	exp, err := experiment.Build(cfg, logger)
	if err != nil {
		return err
	}

	var trace *storage.TraceWriter
	if traceFile != "" {
		f, err := os.Create(traceFile)
		if err != nil {
			return err
		}
		defer f.Close()
		trace = storage.NewTraceWriter(f)
		exp.Simulation().AddObserver(trace)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "running %s simulation...\n", cfg.Substrate.Type)
	start := time.Now()

	result, runErr := exp.Run()
	elapsed := time.Since(start)
	if trace != nil {
		if err := trace.Err(); err != nil {
			logger.Warn("trace incomplete", "err", err)
		}
	}
	if runErr != nil {
		fmt.Fprintln(out, report.StatusFailed.Render("failed"), runErr)
		return runErr
	}

	fmt.Fprintln(out, report.StatusOK.Render("completed"), "in", elapsed)
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		meta, err := st.Save(cfg, result)
		if err != nil {
			return err
		}
		if err := catalogRun(cmd.Context(), st, meta, logger); err != nil {
			logger.Warn("catalog update failed", "err", err)
		}
		fmt.Fprintln(out, report.KeyValue("run id", meta.ID))
	}
	fmt.Fprintln(out, report.KeyValue("steps", result.StepsTaken))
	fmt.Fprintln(out, "\nmetrics:")
	if err := report.Metrics(out, result.Metrics); err != nil {
		return err
	}

	fmt.Fprintln(out, "\ncones:")
	if err := report.Cones(out, result); err != nil {
		return err
	}

	if plot {
		fmt.Fprintln(out)
		fmt.Fprintln(out, report.ConePotentials(result))
	}
	return nil
}

func catalogRun(ctx context.Context, st *storage.Store, meta storage.RunMetadata, logger *slog.Logger) error {
	cat, err := storage.OpenStoreCatalog(ctx, st)
	if err != nil {
		return err
	}
	defer cat.Close()
	logger.Debug("cataloguing run", "id", meta.ID)
	return cat.Add(ctx, meta)
}

func listRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	cat, err := storage.OpenStoreCatalog(ctx, st)
	if err != nil {
		return err
	}
	defer cat.Close()
	if _, err := cat.Sync(ctx, st); err != nil {
		return err
	}

	runs, err := cat.Find(ctx, storage.Query{Substrate: listSubstrate, OrderBy: orderBy, Limit: limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no runs found")
		return nil
	}
	return report.Runs(cmd.OutOrStdout(), runs)
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	out := cmd.OutOrStdout()

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	tracks, err := st.LoadTrajectories(runID)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Fprintln(out, report.Header("run "+meta.ID))
	fmt.Fprintln(out, report.KeyValue("substrate", meta.Substrate))
	fmt.Fprintln(out, report.KeyValue("seed", meta.Seed))
	fmt.Fprintln(out, report.KeyValue("cones", meta.Cones))
	fmt.Fprintln(out, report.KeyValue("steps", meta.Steps))
	fmt.Fprintln(out, report.KeyValue("adaptation", meta.Adaptation))
	fmt.Fprintln(out, "\nmetrics:")
	if err := report.Metrics(out, meta.Metrics); err != nil {
		return err
	}

	mean := make([]float64, len(tracks[0].Potentials))
	for _, tr := range tracks {
		for i := range mean {
			if i < len(tr.Potentials) {
				mean[i] += tr.Potentials[i] / float64(len(tracks))
			}
		}
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, report.Series(mean, "mean guidance potential vs step"))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	kinds := config.PresetKinds()
	if len(args) > 0 {
		kinds = args
	}
	for _, kind := range kinds {
		presets := config.ListPresets(kind)
		if len(presets) == 0 {
			fmt.Fprintf(out, "no presets for substrate: %s\n", kind)
			continue
		}
		fmt.Fprintf(out, "presets for %s:\n", kind)
		for _, p := range presets {
			fmt.Fprintf(out, "  %s\n", p)
		}
	}
	return nil
}

func listSubstrates(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.Header("substrates"))
	for _, name := range substrate.Names() {
		fmt.Fprintf(out, "  %s\n", name)
	}
	return nil
}

// parseParam reads key=lo:hi:n or key=v1,v2,...
func parseParam(s string) (string, []float64, error) {
	key, val, ok := strings.Cut(s, "=")
	if !ok || key == "" || val == "" {
		return "", nil, fmt.Errorf("invalid --param %q: want key=lo:hi:n or key=v1,v2", s)
	}

	if parts := strings.Split(val, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil || n < 1 {
			return "", nil, fmt.Errorf("invalid range in --param %q", s)
		}
		return key, optim.Linspace(lo, hi, n), nil
	}

	var vals []float64
	for _, f := range strings.Split(val, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid value in --param %q: %w", s, err)
		}
		vals = append(vals, v)
	}
	return key, vals, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(sweepParams) == 0 {
		return fmt.Errorf("sweep needs at least one --param")
	}

	var (
		names  []string
		ranges [][]float64
	)
	for _, p := range sweepParams {
		key, vals, err := parseParam(p)
		if err != nil {
			return err
		}
		names = append(names, key)
		ranges = append(ranges, vals)
	}

	goal := optim.Minimize
	if maximize {
		goal = optim.Maximize
	}
	// grid points run concurrently; each simulation steps its cones serially
	gs := optim.NewGridSearch(names, ranges, goal, max(cfg.Workers, 1))
	gs.SetLogger(newLogger(cfg))
	base := cfg.Clone()
	base.Workers = 1

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "sweeping %d points on %s...\n", len(gs.Points()), cfg.Substrate.Type)
	trials, err := gs.Search(cmd.Context(), base, metricName)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, report.Header("best by "+metricName))
	return report.Trials(out, names, trials, top)
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	runWorkers := max(cfg.Workers, 1)
	base := cfg.Clone()
	base.Workers = 1

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "running %d seeds from %d on %s...\n", numRuns, cfg.Seed, cfg.Substrate.Type)
	start := time.Now()
	results, err := experiment.RunEnsemble(cmd.Context(), base, numRuns, runWorkers, logger)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, report.StatusOK.Render("completed"), "in", time.Since(start))
	fmt.Fprintln(out, report.Header("ensemble metrics"))
	return report.Ensemble(out, results)
}

func benchSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.Header(fmt.Sprintf("bench %s: %d cones, %d steps", cfg.Substrate.Type, cfg.Cones.Count, cfg.Movement.NumSteps)))

	counts := []int{1, 2, 4, 8}
	if cmd.Flags().Changed("workers") {
		counts = []int{cfg.Workers}
	}
	for _, w := range counts {
		c := cfg.Clone()
		c.Workers = w
		exp, err := experiment.Build(c, nil)
		if err != nil {
			return err
		}

		start := time.Now()
		res, err := exp.Run()
		if err != nil {
			return err
		}
		elapsed := time.Since(start)
		perStep := elapsed / time.Duration(max(res.StepsTaken, 1))
		fmt.Fprintf(out, "  workers=%d\t%v total\t%v/step\n", w, elapsed, perStep)
	}
	return nil
}
