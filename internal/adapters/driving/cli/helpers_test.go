package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docctx/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docctx/internal/chunker"
	"github.com/custodia-labs/docctx/internal/core/domain"
	"github.com/custodia-labs/docctx/internal/core/services"
	"github.com/custodia-labs/docctx/internal/extractors"
)

// setupTestServices wires the CLI to services over in-memory stores and
// returns a cleanup function restoring the previous wiring.
func setupTestServices(t *testing.T) func() {
	t.Helper()

	prevDocs, prevRetrieval := documentService, retrievalService
	prevSettings, prevConfig := settingsService, configStore

	settings := domain.DefaultAppSettings()
	meta := memory.NewMetadataStore()
	sidecars := memory.NewSidecarStore()
	cache := services.NewChunkCache(meta, sidecars)
	cfg := memory.NewConfigStore()

	documentService = services.NewDocumentService(
		meta,
		sidecars,
		cache,
		extractors.FromSettings(settings.Ingest),
		chunker.FromSettings(settings.Chunking),
		settings.Ingest,
	)
	retrievalService = services.NewRetrievalService(meta, cache, settings.Retrieval.MaxResults)
	settingsService = services.NewSettingsService(cfg, t.TempDir())
	configStore = cfg

	return func() {
		documentService, retrievalService = prevDocs, prevRetrieval
		settingsService, configStore = prevSettings, prevConfig
		queryLimit, queryJSON, clearYes = 0, false, false
		confirmInput = os.Stdin
	}
}

// writeFile creates a file under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// ingestFixture ingests one text file and returns its document ID.
func ingestFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := writeFile(t, t.TempDir(), name, content)
	out, err := execute(t, "ingest", path)
	require.NoError(t, err, out)
	fields := strings.Fields(out)
	require.GreaterOrEqual(t, len(fields), 2)
	return fields[1]
}
