package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dataDir   string
	logLevel  string
	logFormat string

	configFile  string
	preset      string
	seed        int64
	iterations  int
	primaries   int
	workers     int
	tolerance   float64
	keepStreams bool
	quiet       bool

	plotHeight int
	plotWidth  int
	outputFile string
	benchIter  int
)

// main registers the pairmass commands and exits with status 1 when the
// command returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "pairmass",
		Short:         "relativistic pair invariant-mass Monte Carlo",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pairmass", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "generate events, validate and store the run",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the run id")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with a live progress view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run summary, species counts and checks",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id] [histogram]",
		Short: "plot run histograms",
		Args:  cobra.MaximumNArgs(2),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "fit distributions and extract the K* signal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")
	analyzeCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")

	validateCmd := &cobra.Command{
		Use:   "validate [run_id]",
		Short: "re-run the statistical checks on stored histograms",
		Args:  cobra.MaximumNArgs(1),
		RunE:  validateRun,
	}
	validateCmd.Flags().Float64Var(&tolerance, "tolerance", 0, "tolerance in standard errors (default: stored)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export histograms as csv",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and histograms as json",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	particlesCmd := &cobra.Command{
		Use:   "particles",
		Short: "list configured particle types and decays",
		Args:  cobra.NoArgs,
		RunE:  listParticles,
	}
	particlesCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	particlesCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure event throughput per worker count",
		Args:  cobra.NoArgs,
		RunE:  benchmark,
	}
	benchCmd.Flags().IntVar(&benchIter, "events", 20000, "events per measurement")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, showCmd, plotCmd, analyzeCmd, validateCmd,
		exportCSVCmd, exportJSONCmd, presetsCmd, particlesCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&iterations, "iterations", 100000, "number of events")
	cmd.Flags().IntVar(&primaries, "primaries", 100, "primaries per event")
	cmd.Flags().IntVar(&workers, "workers", 1, "parallel workers (0 = one per cpu)")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 3, "check tolerance in standard errors")
	cmd.Flags().BoolVar(&keepStreams, "keep-streams", false, "keep per-primary observables in memory")
}
