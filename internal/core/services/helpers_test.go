package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docctx/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docctx/internal/chunker"
	"github.com/custodia-labs/docctx/internal/core/domain"
	"github.com/custodia-labs/docctx/internal/extractors"
)

// fixture wires the document and retrieval services over memory stores
// with the real chunker and extractors.
type fixture struct {
	meta      *memory.MetadataStore
	sidecars  *memory.SidecarStore
	cache     *ChunkCache
	docs      *DocumentService
	retrieval *RetrievalService
	registry  *extractors.Registry
	chunker   *chunker.Chunker
	settings  domain.AppSettings
	dir       string
}

func newFixture(t *testing.T, tweak ...func(*domain.AppSettings)) *fixture {
	t.Helper()

	settings := domain.DefaultAppSettings()
	for _, fn := range tweak {
		fn(&settings)
	}

	f := &fixture{
		meta:     memory.NewMetadataStore(),
		sidecars: memory.NewSidecarStore(),
		registry: extractors.FromSettings(settings.Ingest),
		chunker:  chunker.FromSettings(settings.Chunking),
		settings: settings,
		dir:      t.TempDir(),
	}
	f.rebuild()
	return f
}

// rebuild replaces the cache and services as a process restart would,
// keeping the stores.
func (f *fixture) rebuild() {
	f.cache = NewChunkCache(f.meta, f.sidecars)
	f.docs = NewDocumentService(f.meta, f.sidecars, f.cache, f.registry, f.chunker, f.settings.Ingest)
	f.retrieval = NewRetrievalService(f.meta, f.cache, f.settings.Retrieval.MaxResults)
}

func (f *fixture) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}
