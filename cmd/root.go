package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/chain-stock/suppy/sim"
)

var (
	chainFile    string // Path to the YAML chain description
	periods      int    // Number of periods to simulate
	startPeriod  int    // First period to simulate
	logLevel     string // Log verbosity level
	metricsFile  string // Metric records output path (JSON lines)
	snapshotFile string // Optional per-period state snapshot path
	controlName  string // Control strategy override
	releaseName  string // Release strategy override
	noInvariants bool   // Disable phase-boundary state checks
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "suppy",
	Short: "Discrete-period simulator for multi-echelon supply chains",
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the supply-chain simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if chainFile == "" {
			logrus.Fatalf("Chain description not provided. Exiting simulation.")
		}

		cfg, err := LoadChainConfig(chainFile)
		if err != nil {
			logrus.Fatalf("Unable to load chain config: %v", err)
		}
		chain, err := cfg.Build()
		if err != nil {
			logrus.Fatalf("Unable to build supply-chain: %v", err)
		}

		// Flags override the strategy selection from the chain file.
		control := cfg.Control
		if controlName != "" {
			control = controlName
		}
		release := cfg.Release
		if releaseName != "" {
			release = releaseName
		}
		controlStrategy, err := sim.NewControlStrategy(control, chain)
		if err != nil {
			logrus.Fatalf("Unable to create control strategy: %v", err)
		}
		releaseStrategy, err := sim.NewReleaseStrategy(release)
		if err != nil {
			logrus.Fatalf("Unable to create release strategy: %v", err)
		}

		recorder, err := sim.NewFileRecorder(metricsFile)
		if err != nil {
			logrus.Fatalf("Unable to open metrics output: %v", err)
		}
		defer func() {
			if err := recorder.Close(); err != nil {
				logrus.Errorf("Closing metrics output: %v", err)
			}
		}()

		s := sim.NewSimulator(chain, controlStrategy, releaseStrategy, recorder)
		s.CheckInvariants = !noInvariants

		if snapshotFile != "" {
			snapshots, err := sim.NewSnapshotWriter(snapshotFile)
			if err != nil {
				// Fatalf exits without running deferred calls.
				recorder.Close()
				logrus.Fatalf("Unable to open snapshot output: %v", err)
			}
			defer func() {
				if err := snapshots.Close(); err != nil {
					logrus.Errorf("Closing snapshot output: %v", err)
				}
			}()
			s.Snapshots = snapshots
			logrus.Infof("Snapshot run id: %s", snapshots.RunID())
		}

		logrus.Infof("Starting simulation of %d nodes for periods %d..%d",
			len(chain.Nodes()), startPeriod, startPeriod+periods-1)

		if err := s.RunBetween(startPeriod, startPeriod+periods-1); err != nil {
			// Fatalf exits without running deferred calls, so flush the
			// records written so far before exiting.
			if s.Snapshots != nil {
				s.Snapshots.Close()
			}
			recorder.Close()
			logrus.Fatalf("Simulation failed: %v", err)
		}

		logrus.Info("Simulation complete.")
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&chainFile, "chain", "", "Path to the YAML chain description")
	runCmd.Flags().IntVar(&periods, "periods", 10, "Number of periods to simulate")
	runCmd.Flags().IntVar(&startPeriod, "start-period", 1, "First period to simulate")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&metricsFile, "metrics", "suppy-metrics.jsonl", "Metric records output path (one JSON object per line)")
	runCmd.Flags().StringVar(&snapshotFile, "snapshots", "", "Optional per-period state snapshot output path")
	runCmd.Flags().StringVar(&controlName, "control", "", "Control strategy (rsq, me-rs); overrides the chain file")
	runCmd.Flags().StringVar(&releaseName, "release", "", "Release strategy (fractional); overrides the chain file")
	runCmd.Flags().BoolVar(&noInvariants, "no-invariant-checks", false, "Disable state validation at phase boundaries")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
