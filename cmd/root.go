package cmd

import (
	"github.com/slidecast/slidecast/internal/utils"
	"github.com/spf13/cobra"
)

var (
	// verbosityLevel is the command-line flag for setting the log level
	verbosityLevel string
)

var rootCmd = &cobra.Command{
	Use:   "slidecast",
	Short: "A subtitle timing and layout tool for narrated slideshow videos",
	Long: `Slidecast turns narration scripts and their rendered audio tracks
into time-coded ASS subtitle documents, driven by YAML workflows.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Set the global log level based on the flag
		logLevel := utils.LogLevelFromString(verbosityLevel)
		utils.SetLogLevel(logLevel)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Initialize global flags
	rootCmd.PersistentFlags().StringVarP(&verbosityLevel, "log-level", "l", "normal",
		"Set the logging verbosity level: quiet, normal, verbose, debug")
}
