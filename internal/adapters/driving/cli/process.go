package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process [identifier]",
	Short: "Process a single media item immediately",
	Long: `Fetches and transcribes one media item outside the periodic scan.
The identifier must be a media source URI, for example:

  journal-assistant process media-source://media_source/Daily-01-P20221030210759068713clbdtpKcEWTi.png`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := ensureApp(ctx)
	if err != nil {
		return err
	}

	identifier := args[0]
	if err := a.processor.ProcessItem(ctx, identifier); err != nil {
		return fmt.Errorf("processing %s: %w", identifier, err)
	}
	cmd.Printf("Processed %s\n", identifier)

	if err := a.indexer.Rebuild(ctx); err != nil {
		return fmt.Errorf("index rebuild failed: %w", err)
	}
	return nil
}
