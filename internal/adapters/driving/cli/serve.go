package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/journal-assistant/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the background scan service",
	Long: `Runs the assistant as a long-lived service: an immediate scan on
startup, periodic re-scans at the configured interval, and a filesystem
watcher that triggers a scan shortly after new pages appear in the media
directory. Stops cleanly on SIGINT or SIGTERM, letting an in-flight scan
finish first.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := ensureApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	changes, err := a.source.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for range changes {
			logger.Info("Media change detected, triggering scan")
			a.scheduler.Trigger()
		}
	}()

	cmd.Printf("Watching %s (scan interval %s). Press Ctrl-C to stop.\n",
		a.cfg.Media.Root, a.cfg.Media.ScanInterval)

	err = a.scheduler.Start(ctx)
	a.scheduler.Stop()
	if ctx.Err() != nil {
		cmd.Println("Shutting down.")
		return nil
	}
	return err
}
