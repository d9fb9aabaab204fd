package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/etm-sim/etm-sim/etm"
	"github.com/etm-sim/etm-sim/etm/results"
)

var (
	// CLI flags for engine configs
	seed           int64   // Seed for all stochastic subsystems
	maxTicks       int     // Total simulation length (in ticks)
	logLevel       string  // Log verbosity level
	scenarioName   string  // Built-in scenario preset
	scenarioFile   string  // YAML preset overriding the built-in scenario
	resultsPath    string  // Output path for the JSON results document
	connectivity   int     // Lattice neighbor connectivity (6, 8 or 12)
	latticeDim     int     // Cubic lattice edge length
	phaseTolerance float64 // Circular phase tolerance for return matching
	rhoMin         float64 // Hybrid echo floor for return eligibility
	decayFactor    float64 // Per-tick multiplicative echo decay
	resolution     string  // Conflict resolution method for detection events
	decayLifetime  int     // Beta decay characteristic lifetime (in ticks)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "etm-sim",
	Short: "Discrete-time lattice simulator for timing-pattern particle mechanics",
}

// runCmd executes one trial using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation trial",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := etm.DefaultConfig()
		cfg.Seed = seed
		cfg.MaxTicks = maxTicks
		cfg.Connectivity = connectivity
		cfg.LatticeSize = [3]int{latticeDim, latticeDim, latticeDim}
		cfg.PhaseTolerance = phaseTolerance
		cfg.RhoMin = rhoMin
		cfg.DecayFactor = decayFactor
		cfg.DefaultResolution = etm.ConflictMethod(resolution)
		cfg.BetaDecayLifetimeTicks = decayLifetime

		scenario, err := LoadScenario(scenarioName, scenarioFile)
		if err != nil {
			logrus.Fatalf("Could not load scenario: %v", err)
		}
		scenario.ApplyConfig(&cfg)

		engine, err := etm.NewEngine(cfg)
		if err != nil {
			logrus.Fatalf("Could not build engine: %v", err)
		}
		if err := scenario.Populate(engine); err != nil {
			logrus.Fatalf("Could not populate scenario %q: %v", scenario.Name, err)
		}

		startTime := time.Now()
		result := engine.RunSimulation()
		engine.Metrics.Print()
		logrus.Infof("Trial wall time: %v", time.Since(startTime))

		if resultsPath != "" {
			if err := results.Write(result, resultsPath); err != nil {
				logrus.Fatalf("Could not write results: %v", err)
			}
		}
	},
}

// stabilityCmd tests the particle pattern library against the stress battery
var stabilityCmd = &cobra.Command{
	Use:   "stability",
	Short: "Run the particle stability stress battery",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		tester := etm.NewStabilityTester()
		patterns := []struct {
			name    string
			pattern *etm.Pattern
		}{
			{"electron", etm.NewElectronPattern()},
			{"proton", etm.NewEnhancedProtonPattern()},
			{"legacy_proton", etm.NewLegacyProtonPattern()},
			{"neutrino", etm.NewNeutrinoPattern("electron", 100)},
		}
		for _, p := range patterns {
			for _, condition := range tester.ConditionNames() {
				report := tester.Test(p.pattern, condition)
				logrus.Infof("%-14s %-22s overall=%.4f agn=%.4f level=%s",
					p.name, condition, report.OverallStability, report.AGNSurvival, report.Level)
			}
		}
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
	runCmd.Flags().Int64Var(&seed, "seed", 1, "Seed for all stochastic subsystems")
	runCmd.Flags().IntVar(&maxTicks, "ticks", 100, "Total number of simulation ticks")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&scenarioName, "scenario", "coexistence", "Built-in scenario (coexistence, conflict, beta-decay, annihilation)")
	runCmd.Flags().StringVar(&scenarioFile, "scenario-file", "", "YAML scenario preset overriding the built-in one")
	runCmd.Flags().StringVar(&resultsPath, "results", "", "Write the JSON results document to this path")

	// Lattice and matching configs
	runCmd.Flags().IntVar(&connectivity, "connectivity", 8, "Lattice neighbor connectivity (6, 8 or 12)")
	runCmd.Flags().IntVar(&latticeDim, "lattice-dim", 30, "Cubic lattice edge length")
	runCmd.Flags().Float64Var(&phaseTolerance, "phase-tolerance", 0.11, "Circular phase tolerance for return matching")
	runCmd.Flags().Float64Var(&rhoMin, "rho-min", 25.0, "Hybrid echo floor for return eligibility")
	runCmd.Flags().Float64Var(&decayFactor, "decay-factor", 0.95, "Per-tick multiplicative echo decay")
	runCmd.Flags().StringVar(&resolution, "resolution", string(etm.MethodSymbolicMutation),
		"Conflict resolution method (coexistence, symbolic_mutation, identity_rename, phase_separation, exclusion)")
	runCmd.Flags().IntVar(&decayLifetime, "decay-lifetime", 900, "Neutron beta decay characteristic lifetime in ticks")

	stabilityCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(stabilityCmd)
}
