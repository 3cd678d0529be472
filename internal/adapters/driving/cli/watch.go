package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docctx/internal/connectors/filesystem"
	"github.com/custodia-labs/docctx/internal/core/domain"
)

var watchInitial bool

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest files dropped into a directory",
	Long: `Watches a directory tree and ingests supported files as they are created
or modified. Hidden files and directories are ignored, and deleting a file
does not remove its document.

Use --initial to ingest the files already present before watching.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "ingest existing files before watching")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	report := func(o domain.IngestOutcome) {
		if o.OK() {
			cmd.Printf("  ingested  %s  %s\n", o.DocumentID, o.Path)
			return
		}
		cmd.Printf("  failed    %s: %s\n", o.Path, describeError(o.Err))
	}

	watcher := filesystem.New(args[0], documentService,
		filesystem.WithRate(watchRate),
		filesystem.WithOutcomeHandler(report),
	)
	if err := watcher.Validate(); err != nil {
		return fmt.Errorf("cannot watch %s: %w", args[0], err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if watchInitial {
		cmd.Printf("Scanning %s...\n", watcher.Root())
		if _, err := watcher.Scan(ctx); err != nil {
			return fmt.Errorf("initial scan failed: %w", err)
		}
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", watcher.Root())
	return watcher.Run(ctx)
}
