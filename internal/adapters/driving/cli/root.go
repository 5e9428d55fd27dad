// Package cli implements the journal-assistant command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/journal-assistant/internal/logger"
)

// version is the CLI version, overridable at build time via ldflags.
var version = "0.1.0"

var (
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "journal-assistant",
	Short: "Index and search a handwritten bullet journal",
	Long: `journal-assistant watches a directory of exported notebook pages,
transcribes changed pages with a vision model, and maintains a local
vector index so the journal can be searched conversationally.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (default ~/.journal-assistant/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
