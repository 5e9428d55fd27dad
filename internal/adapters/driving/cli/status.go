package cli

import (
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show statistics from the last scan",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := ensureApp(ctx)
	if err != nil {
		return err
	}

	stats, err := a.processor.Stats(ctx)
	if err != nil {
		return err
	}

	if stats.ScanID == "" {
		cmd.Println("No scan has run yet.")
	} else {
		cmd.Printf("Last scan:       %s\n", stats.LastScanStart.Format(time.RFC3339))
		cmd.Printf("Duration:        %s\n", stats.LastScanEnd.Sub(stats.LastScanStart).Round(time.Millisecond))
		cmd.Printf("Folders scanned: %d\n", stats.ScannedFolders)
		cmd.Printf("Files scanned:   %d\n", stats.ScannedFiles)
		cmd.Printf("Files processed: %d\n", stats.ProcessedFiles)
		cmd.Printf("Unchanged:       %d\n", stats.SkippedItems)
		cmd.Printf("Errors:          %d\n", stats.Errors)
	}

	cmd.Printf("Indexed entries: %d\n", a.index.Count())
	return nil
}
