package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/pairmass/internal/analysis"
	"github.com/san-kum/pairmass/internal/config"
	"github.com/san-kum/pairmass/internal/logging"
	"github.com/san-kum/pairmass/internal/sim"
	"github.com/san-kum/pairmass/internal/storage"
	"github.com/san-kum/pairmass/internal/validate"
	"github.com/san-kum/pairmass/internal/viz"
	"github.com/spf13/cobra"
)

// loadConfig layers preset or file, environment and flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
	case configFile != "":
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	default:
		cfg = config.DefaultConfig()
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("iterations") {
		cfg.Iterations = iterations
	}
	if flags.Changed("primaries") {
		cfg.Primaries = primaries
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("tolerance") {
		cfg.Tolerance = tolerance
	}
	if flags.Changed("keep-streams") {
		cfg.KeepStreams = keepStreams
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
}

// cliLogger is used by commands that do not load a run config.
func cliLogger() *slog.Logger {
	return logging.New(logging.Config{Level: logLevel, Format: logFormat})
}

func newSimulator(cfg *config.Config, opts ...sim.Option) (*sim.Simulator, error) {
	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	return sim.New(reg, cfg.Species(), cfg.DecayChannels(), opts...)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	s, err := newSimulator(cfg, sim.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	sc := cfg.SimConfig()
	res, err := s.Run(ctx, sc)
	return finishRun(cfg, sc, res, err, logger)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// the progress view owns the terminal
	logger := logging.Discard()

	sc := cfg.SimConfig()
	title := fmt.Sprintf("pairmass: %d events × %d primaries, %d workers", sc.Iterations, sc.Primaries, sc.Workers)
	res, err := viz.RunLive(cmd.Context(), title, func(ctx context.Context, obs sim.Observer) (*sim.Result, error) {
		s, err := newSimulator(cfg, sim.WithLogger(logger), sim.WithObserver(obs))
		if err != nil {
			return nil, err
		}
		return s.Run(ctx, sc)
	})
	return finishRun(cfg, sc, res, err, newLogger(cfg))
}

// finishRun validates and stores a run. An interrupted run is still stored
// with the events it completed.
func finishRun(cfg *config.Config, sc sim.Config, res *sim.Result, runErr error, logger *slog.Logger) error {
	if res == nil {
		return runErr
	}
	if runErr != nil {
		if !errors.Is(runErr, context.Canceled) {
			return runErr
		}
		logger.Warn("run interrupted", "events", res.Events, "iterations", sc.Iterations)
	}

	checks := sim.Validate(res, cfg.Tolerance)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	meta := storage.NewMetadata(sc, cfg.Tolerance, res, checks)
	runID, err := st.Save(meta, res.Histograms.Snapshots())
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	logger.Info("run saved", "run", runID, "dir", dataDir)

	if quiet {
		fmt.Println(runID)
		return nil
	}

	fmt.Printf("run: %s\n", runID)
	fmt.Println(viz.RenderSummary(res))
	fmt.Println(viz.RenderSpecies(res.Species, res.Events, res.Primaries))
	fmt.Println(viz.RenderChecks(checks))
	return nil
}

// resolveRun returns the run named in args or the latest stored run.
func resolveRun(st *storage.Store, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	return st.Latest()
}

func loadRun(args []string) (*storage.RunMetadata, *sim.Histograms, error) {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return nil, nil, err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	snaps, err := st.LoadHistograms(runID)
	if err != nil {
		return nil, nil, err
	}
	h, err := sim.HistogramsFromSnapshots(snaps)
	if err != nil {
		return nil, nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return meta, h, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSEED\tEVENTS\tPRIMARIES\tWORKERS\tSKIPPED\tCHECKS\tELAPSED")

	for _, run := range runs {
		failed := len(validate.Failed(run.Checks))
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d/%d\t%.2fs\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Seed,
			run.Events,
			run.Primaries,
			run.Workers,
			run.Skipped,
			len(run.Checks)-failed,
			len(run.Checks),
			run.Elapsed,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, h, err := loadRun(args)
	if err != nil {
		return err
	}
	res := meta.Result(h)

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("seed: %d  tolerance: %.1f\n", meta.Seed, meta.Tolerance)
	fmt.Println(viz.RenderSummary(res))
	fmt.Println(viz.RenderSpecies(res.Species, res.Events, res.Primaries))
	fmt.Println(viz.RenderChecks(meta.Checks))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	var runArgs []string
	name := ""
	switch len(args) {
	case 1:
		if strings.HasPrefix(args[0], "run_") {
			runArgs = args
		} else {
			name = args[0]
		}
	case 2:
		runArgs, name = args[:1], args[1]
	}

	meta, h, err := loadRun(runArgs)
	if err != nil {
		return err
	}
	opts := viz.PlotOptions{Height: plotHeight, Width: plotWidth}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("events: %d\n\n", meta.Events)

	if name != "" {
		hh, ok := h.Get(name)
		if !ok {
			return fmt.Errorf("unknown histogram %q", name)
		}
		fmt.Println(viz.PlotHistogram(hh, opts))
		return nil
	}

	for _, hh := range h.List() {
		fmt.Println(hh.Name())
		fmt.Println(viz.PlotHistogram(hh, opts))
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, h, err := loadRun(args)
	if err != nil {
		return err
	}
	logger := cliLogger()

	fits, errs := analysis.Analyze(h)
	for _, err := range errs {
		logger.Warn("fit failed", "run", meta.ID, "error", err)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Println(viz.RenderFits(fits))

	all, pionKaon, err := analysis.Signals(h)
	if err != nil {
		return err
	}
	opts := viz.PlotOptions{Height: plotHeight, Width: plotWidth}
	fmt.Println(viz.PlotHistogram(all, opts))
	fmt.Println()
	fmt.Println(viz.PlotHistogram(pionKaon, opts))
	return nil
}

func validateRun(cmd *cobra.Command, args []string) error {
	meta, h, err := loadRun(args)
	if err != nil {
		return err
	}

	tol := meta.Tolerance
	if cmd.Flags().Changed("tolerance") {
		tol = tolerance
	}
	if tol <= 0 {
		tol = validate.DefaultTolerance
	}

	checks := sim.Validate(meta.Result(h), tol)
	fmt.Printf("run: %s (tolerance %.1fσ)\n", meta.ID, tol)
	fmt.Println(viz.RenderChecks(checks))

	if failed := validate.Failed(checks); len(failed) > 0 {
		return fmt.Errorf("%d of %d checks failed", len(failed), len(checks))
	}
	return nil
}

func output() (io.WriteCloser, error) {
	if outputFile == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outputFile)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	snaps, err := st.LoadHistograms(runID)
	if err != nil {
		return err
	}

	w, err := output()
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(w, snaps); err != nil {
		w.Close()
		return err
	}
	if outputFile != "" {
		fmt.Fprintf(os.Stderr, "exported %d histograms to %s\n", len(snaps), outputFile)
	}
	return w.Close()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	snaps, err := st.LoadHistograms(runID)
	if err != nil {
		return err
	}

	w, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, *meta, snaps); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tITERATIONS\tPRIMARIES\tWORKERS\tMASS BINS\tMASS RANGE")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		workers := fmt.Sprintf("%d", p.Workers)
		if p.Workers == 0 {
			workers = "auto"
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%d\t[%.2f, %.2f)\n",
			name, p.Iterations, p.Primaries, workers,
			p.Binning.MassBins, p.Binning.MinMass, p.Binning.MaxMass)
	}
	return w.Flush()
}

func listParticles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	probs := make(map[string]float64, len(cfg.Particles))
	for _, p := range cfg.Particles {
		probs[p.Name] = p.Probability
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tTYPE\tPROBABILITY")
	for i, t := range reg.Types() {
		fmt.Fprintf(w, "%d\t%s\t%.4f\n", i, t, probs[t.Name])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(cfg.Decays) > 0 {
		fmt.Println()
		for _, d := range cfg.Decays {
			fmt.Printf("%s → %s %s  (%.2f)\n", d.Parent, d.Daughters[0], d.Daughters[1], d.Branching)
		}
	}
	return nil
}

func benchmark(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := newSimulator(cfg, sim.WithLogger(logging.Discard()))
	if err != nil {
		return err
	}

	counts := []int{1, 2, 4, runtime.NumCPU()}
	slices.Sort(counts)
	counts = slices.Compact(counts)

	fmt.Printf("benchmarking %d events × %d primaries\n\n", benchIter, cfg.Primaries)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tELAPSED\tEVENTS/S\tPAIRS/S\tSPEEDUP")

	var base time.Duration
	for _, n := range counts {
		sc := cfg.SimConfig()
		sc.Iterations = benchIter
		sc.Workers = n
		sc.KeepStreams = false

		res, err := s.Run(cmd.Context(), sc)
		if err != nil {
			return err
		}
		if base == 0 {
			base = res.Elapsed
		}
		secs := res.Elapsed.Seconds()
		fmt.Fprintf(w, "%d\t%v\t%.0f\t%.3g\t%.2fx\n",
			n,
			res.Elapsed.Round(time.Millisecond),
			float64(res.Events)/secs,
			float64(res.Pairs)/secs,
			base.Seconds()/secs,
		)
	}
	return w.Flush()
}
