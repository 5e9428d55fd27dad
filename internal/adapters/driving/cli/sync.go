package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
)

var syncNoIndex bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Scan the media source and process changed pages",
	Long: `Runs one change-detection pass over the media source.
Pages whose content changed since the last scan are transcribed with the
vision model and stored; the search index is then rebuilt from the stored
pages.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncNoIndex, "no-index", false, "skip the index rebuild after the scan")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := ensureApp(ctx)
	if err != nil {
		return err
	}

	cmd.Println("Scanning media source...")
	stats, err := a.processor.ProcessOnce(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrScanInProgress) {
			return errors.New("a scan is already running")
		}
		return fmt.Errorf("scan failed: %w", err)
	}

	cmd.Printf("Scanned %d folders, %d files: %d processed, %d unchanged, %d errors\n",
		stats.ScannedFolders, stats.ScannedFiles,
		stats.ProcessedFiles, stats.SkippedItems, stats.Errors)

	if syncNoIndex || stats.ProcessedFiles == 0 {
		return nil
	}

	cmd.Println("Rebuilding search index...")
	if err := a.indexer.Rebuild(ctx); err != nil {
		return fmt.Errorf("index rebuild failed: %w", err)
	}
	cmd.Printf("Index now holds %d documents.\n", a.index.Count())
	return nil
}
