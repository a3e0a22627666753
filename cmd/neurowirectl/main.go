package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "neurowirectl",
		Short: "Evolve wired neuron populations on a grid",
		Long: `neurowirectl runs grid world evolutions, stores their snapshots and
exports populations as dump.json for later study or restarts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("store", "", "Store kind: memory or sqlite")
	rootCmd.PersistentFlags().String("db-path", "", "SQLite database path")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: warn, info, debug or trace")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(),
		newRunCmd(),
		newRunsCmd(),
		newShowCmd(),
		newExportCmd(),
	)
	return rootCmd
}
