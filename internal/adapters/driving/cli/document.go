package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Ingest documents",
	Long: `Extracts text from each file, splits it into chunks and stores it.

Files are processed concurrently. A failure on one file does not stop the
others; the command exits non-zero if any file failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var infoCmd = &cobra.Command{
	Use:   "info [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

var removeCmd = &cobra.Command{
	Use:   "remove [doc-id...]",
	Short: "Remove documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRemove,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every document",
	Long:  `Deletes the metadata index and all chunk files. Asks for confirmation unless --yes is given.`,
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete orphaned chunk files",
	Long:  `Deletes chunk files that have no entry in the metadata index.`,
	Args:  cobra.NoArgs,
	RunE:  runCleanup,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show storage statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported file extensions",
	Args:  cobra.NoArgs,
	RunE:  runFormats,
}

// clearYes skips the clear confirmation.
var clearYes bool

// confirmInput is where clear reads its confirmation from.
var confirmInput io.Reader = os.Stdin

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "do not ask for confirmation")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(formatsCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	outcomes := documentService.IngestMany(cmd.Context(), args)

	failed := 0
	for _, o := range outcomes {
		if o.OK() {
			cmd.Printf("  ingested  %s  %s\n", o.DocumentID, o.Path)
			continue
		}
		failed++
		cmd.Printf("  failed    %s: %s\n", o.Path, describeError(o.Err))
	}

	cmd.Printf("\n%d ingested, %d failed\n", len(outcomes)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(outcomes))
	}
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents stored.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s  %s\n", docs[i].ID, docs[i].Filename)
		cmd.Printf("    Format: %s  Size: %d bytes  Chunks: %d\n", docs[i].Format, docs[i].SizeBytes, docs[i].ChunkCount)
		cmd.Printf("    Ingested: %s\n", docs[i].IngestedAt.Local().Format("2006-01-02 15:04:05"))
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	info, err := documentService.Info(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", info.ID)
	cmd.Printf("  Filename:   %s\n", info.Filename)
	cmd.Printf("  Path:       %s\n", info.Path)
	cmd.Printf("  Format:     %s\n", info.Format)
	cmd.Printf("  Size:       %d bytes\n", info.SizeBytes)
	cmd.Printf("  Characters: %d\n", info.ContentLength)
	cmd.Printf("  Chunks:     %d\n", info.ChunkCount)
	cmd.Printf("  Storage:    %d bytes\n", info.StorageBytes)
	cmd.Printf("  Ingested:   %s\n", info.IngestedAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	outcomes := documentService.RemoveMany(cmd.Context(), args)

	var errs []error
	for _, id := range args {
		o := outcomes[id]
		switch {
		case o.Err != nil:
			cmd.Printf("  failed    %s: %s\n", id, describeError(o.Err))
			errs = append(errs, fmt.Errorf("%s: %w", id, o.Err))
		case o.Removed:
			cmd.Printf("  removed   %s\n", id)
		default:
			cmd.Printf("  unknown   %s\n", id)
		}
	}
	return errors.Join(errs...)
}

func runClear(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if !clearYes {
		if !isTerminal(confirmInput) {
			return errors.New("refusing to clear without a terminal; pass --yes")
		}
		cmd.Print("Remove every stored document? [y/N]: ")
		if !confirmed(confirmInput) {
			cmd.Println("Aborted.")
			return nil
		}
	}

	n, err := documentService.ClearAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to clear documents: %w", err)
	}

	cmd.Printf("Removed %d documents.\n", n)
	return nil
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	removed, err := documentService.CleanupOrphans(cmd.Context())
	for _, id := range removed {
		cmd.Printf("  deleted orphan %s\n", id)
	}
	if err != nil {
		return fmt.Errorf("cleanup incomplete: %w", err)
	}

	cmd.Printf("Removed %d orphaned chunk files.\n", len(removed))
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	stats, err := documentService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	cmd.Printf("Documents: %d\n", stats.DocumentCount)
	cmd.Printf("Chunks:    %d\n", stats.ChunkCount)
	cmd.Printf("Storage:   %.2f MB\n", stats.TotalSizeMB())
	return nil
}

func runFormats(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	cmd.Println(strings.Join(documentService.SupportedFormats(), " "))
	return nil
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		// Non-file readers are only injected by tests.
		return true
	}
	return term.IsTerminal(int(f.Fd()))
}

func confirmed(r io.Reader) bool {
	input, _ := bufio.NewReader(r).ReadString('\n') //nolint:errcheck // EOF means no
	answer := strings.ToLower(strings.TrimSpace(input))
	return answer == "y" || answer == "yes"
}
