package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docctx/internal/core/domain"
	"github.com/custodia-labs/docctx/internal/core/services"
)

var (
	queryLimit int
	queryJSON  bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text...]",
	Short: "Find context for a question",
	Long: `Ranks stored chunks by how many distinct query words they contain and
prints the best ones as a context block ready to paste into a prompt.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 0, "maximum number of chunks (0 = configured default)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

type queryResultJSON struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Position   int    `json:"position"`
	Score      int    `json:"score"`
	Text       string `json:"text"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	text := strings.Join(args, " ")
	results, err := retrievalService.Search(cmd.Context(), text, queryLimit)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputQueryJSON(cmd, results)
	}

	if len(results) == 0 {
		cmd.Println("No relevant context found.")
		return nil
	}
	cmd.Print(services.RenderContext(results))
	return nil
}

func outputQueryJSON(cmd *cobra.Command, results []domain.RelevanceResult) error {
	out := make([]queryResultJSON, len(results))
	for i := range results {
		out[i] = queryResultJSON{
			DocumentID: results[i].Document.ID,
			Filename:   results[i].Document.Filename,
			Position:   results[i].Chunk.Position,
			Score:      results[i].Score,
			Text:       results[i].Chunk.Text,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
