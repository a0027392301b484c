package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/waddington/internal/config"
	"github.com/san-kum/waddington/internal/logging"
)

var (
	dataDir   string
	logLevel  string
	logFormat string

	configFile string
	preset     string
	profile    string
	condition  string
	mode       string
	integrator string
	width      float64
	depth      float64
	noise      float64
	quartic    float64
	dt         float64
	steps      int
	seed       int64
	start      []float64
	transient  int
	vocab      string
	workers    int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "waddington",
		Short:         "stochastic walks on a homeostatic landscape",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logging.Init(level, logFormat)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text|json)")

	rootCmd.AddCommand(
		newRunCmd(),
		newMapCmd(),
		newCompareCmd(),
		newLandscapeCmd(),
		newSweepCmd(),
		newPresetsCmd(),
		newListCmd(),
		newShowCmd(),
		newDeleteCmd(),
		newViewCmd(),
		newInitConfigCmd(),
	)
	return rootCmd
}
