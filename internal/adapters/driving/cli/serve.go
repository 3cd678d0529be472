package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docctx/internal/adapters/driving/mcp"
)

var serveHTTP string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can query the
stored documents.

By default, the server communicates over stdio using JSON-RPC and can be
used with any MCP-compatible assistant.

Use --http to serve streamable HTTP instead.

Examples:
  # Stdio mode (default)
  docctx serve

  # HTTP mode (for MCP Inspector, remote access)
  docctx serve --http :8080

Assistant configuration:
  {
    "mcpServers": {
      "docctx": {
        "command": "/path/to/docctx",
        "args": ["serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHTTP, "http", "", "HTTP listen address (empty = use stdio)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ports := &mcp.Ports{
		Retrieval: retrievalService,
		Document:  documentService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serveHTTP != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on %s\n", serveHTTP)
		return server.RunHTTP(ctx, serveHTTP)
	}

	return server.Run(ctx)
}
