package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "stepguide",
	Short: "Turn scanned manuals into playable step-by-step workflows",
	Long: `stepguide extracts ordered, timed steps from scanned or diagram-heavy
manuals, stores them as workflows under stable identifiers, and serves them
to playback clients over HTTP and MCP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: ./config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
