package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docctx/internal/core/domain"
	"github.com/custodia-labs/docctx/internal/core/ports/driven"
	"github.com/custodia-labs/docctx/internal/core/ports/driving"
	"github.com/custodia-labs/docctx/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService ingests files into the corpus and manages their lifecycle.
//
// Locking: corpus-wide operations (ClearAll, CleanupOrphans) take mu
// exclusively; everything else takes it shared plus the per-document lock,
// so different documents proceed in parallel while one document's metadata
// and chunks always change together.
type DocumentService struct {
	meta     driven.MetadataStore
	sidecars driven.SidecarStore
	cache    *ChunkCache
	registry driven.ExtractorRegistry
	chunker  driven.Chunker
	settings domain.IngestSettings

	mu    sync.RWMutex
	locks *keyedMutex
	now   func() time.Time
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	meta driven.MetadataStore,
	sidecars driven.SidecarStore,
	cache *ChunkCache,
	registry driven.ExtractorRegistry,
	chunker driven.Chunker,
	settings domain.IngestSettings,
) *DocumentService {
	if settings.Concurrency <= 0 {
		settings.Concurrency = 1
	}
	return &DocumentService{
		meta:     meta,
		sidecars: sidecars,
		cache:    cache,
		registry: registry,
		chunker:  chunker,
		settings: settings,
		locks:    newKeyedMutex(),
		now:      time.Now,
	}
}

// Ingest extracts, chunks and stores the file at path. Nothing is stored
// unless every step succeeds.
func (s *DocumentService) Ingest(ctx context.Context, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty path", domain.ErrInvalidInput)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return "", fmt.Errorf("%w: %s: %v", domain.ErrStorageIO, path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("%w: %s is empty", domain.ErrEmptyContent, path)
	}
	if s.settings.MaxFileBytes > 0 && info.Size() > s.settings.MaxFileBytes {
		return "", fmt.Errorf("%w: %s is %d bytes (limit %d)",
			domain.ErrTooLarge, path, info.Size(), s.settings.MaxFileBytes)
	}

	ext := strings.ToLower(filepath.Ext(absPath))
	if !s.registry.Supports(ext) {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupported, ext)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", domain.ErrStorageIO, path, err)
	}
	if len(content) == 0 {
		return "", fmt.Errorf("%w: %s is empty", domain.ErrEmptyContent, path)
	}
	id := domain.NewDocID(content)

	text, err := s.registry.Extract(ctx, absPath, ext)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no text extracted from %s", domain.ErrEmptyContent, path)
	}

	chunks := s.chunker.Chunk(id, text)
	if len(chunks) == 0 {
		return "", fmt.Errorf("%w: no chunks produced from %s", domain.ErrEmptyContent, path)
	}

	doc := domain.Document{
		ID:            id,
		Filename:      filepath.Base(absPath),
		Path:          absPath,
		Format:        ext,
		SizeBytes:     int64(len(content)),
		IngestedAt:    s.now().UTC(),
		ContentLength: len([]rune(text)),
		ChunkCount:    len(chunks),
	}
	if err := s.commit(ctx, doc, chunks); err != nil {
		return "", err
	}

	logger.Info("ingested %s as %s (%d chunks)", doc.Filename, id, len(chunks))
	return id, nil
}

// commit stores chunks and metadata for one document as a unit.
func (s *DocumentService) commit(ctx context.Context, doc domain.Document, chunks []domain.Chunk) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	unlock := s.locks.Lock(doc.ID)
	defer unlock()

	existed := s.meta.Has(ctx, doc.ID)

	if err := s.cache.Put(ctx, doc.ID, chunks); err != nil {
		return storageErr(err)
	}
	if err := s.meta.Put(ctx, doc); err != nil {
		// Identical bytes give identical chunks, so a previous record stays
		// consistent with the sidecar just written.
		if !existed {
			if evictErr := s.cache.Evict(ctx, doc.ID); evictErr != nil {
				logger.Warn("rolling back chunks for %s: %v", doc.ID, evictErr)
			}
		}
		return storageErr(err)
	}
	return nil
}

// IngestMany ingests paths with bounded parallelism. The outcome at index i
// belongs to paths[i].
func (s *DocumentService) IngestMany(ctx context.Context, paths []string) []domain.IngestOutcome {
	outcomes := make([]domain.IngestOutcome, len(paths))

	var g errgroup.Group
	g.SetLimit(s.settings.Concurrency)
	for i, path := range paths {
		g.Go(func() error {
			jobID := uuid.NewString()
			start := time.Now()
			logger.Debug("job %s: ingesting %s", jobID, path)

			outcome := domain.IngestOutcome{JobID: jobID, Path: path}
			if err := ctx.Err(); err != nil {
				outcome.Err = err
			} else {
				outcome.DocumentID, outcome.Err = s.Ingest(ctx, path)
			}
			outcome.Duration = time.Since(start)

			if outcome.Err != nil {
				logger.Debug("job %s: %s failed: %v", jobID, path, outcome.Err)
			}
			outcomes[i] = outcome
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// Remove deletes a document's metadata and chunks.
func (s *DocumentService) Remove(ctx context.Context, id string) (bool, error) {
	if !domain.IsValidDocID(id) {
		return false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	unlock := s.locks.Lock(id)
	defer unlock()

	removed, err := s.meta.Remove(ctx, id)
	if err != nil {
		return false, storageErr(err)
	}
	if !removed {
		return false, nil
	}
	if err := s.cache.Evict(ctx, id); err != nil {
		// The record is gone; the leftover sidecar is now an orphan.
		return true, storageErr(err)
	}
	logger.Info("removed document %s", id)
	return true, nil
}

// RemoveMany removes each ID independently; one failure never stops the rest.
func (s *DocumentService) RemoveMany(ctx context.Context, ids []string) map[string]domain.RemoveOutcome {
	outcomes := make(map[string]domain.RemoveOutcome, len(ids))
	for _, id := range ids {
		removed, err := s.Remove(ctx, id)
		outcomes[id] = domain.RemoveOutcome{Removed: removed, Err: err}
	}
	return outcomes
}

// ClearAll removes every document and sidecar.
func (s *DocumentService) ClearAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.meta.List(ctx)
	if err != nil {
		return 0, storageErr(err)
	}
	if err := s.meta.Clear(ctx); err != nil {
		return 0, storageErr(err)
	}
	if err := s.cache.EvictAll(ctx); err != nil {
		return len(docs), storageErr(err)
	}
	logger.Info("cleared %d documents", len(docs))
	return len(docs), nil
}

// CleanupOrphans deletes sidecars that have no metadata record.
// Returns the IDs that were deleted; failures are joined into the error.
func (s *DocumentService) CleanupOrphans(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.sidecars.List(ctx)
	if err != nil {
		return nil, storageErr(err)
	}

	var removed []string
	var errs []error
	for _, id := range ids {
		if s.meta.Has(ctx, id) {
			continue
		}
		if err := s.sidecars.Delete(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("orphan %s: %w", id, err))
			continue
		}
		logger.Debug("deleted orphan sidecar %s", id)
		removed = append(removed, id)
	}
	return removed, errors.Join(errs...)
}

// Stats reports document, chunk and storage totals. Chunk counts come from
// the chunk sequences themselves, loading any that are not resident.
func (s *DocumentService) Stats(ctx context.Context) (*domain.StorageStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs, err := s.meta.List(ctx)
	if err != nil {
		return nil, storageErr(err)
	}

	stats := &domain.StorageStats{DocumentCount: len(docs)}
	for _, doc := range docs {
		chunks, err := s.cache.Get(ctx, doc.ID)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				logger.Warn("skipping chunks of %s in stats: %v", doc.ID, err)
			}
			continue
		}
		stats.ChunkCount += len(chunks)
	}

	metaBytes, err := s.meta.StorageBytes()
	if err != nil {
		return nil, storageErr(err)
	}
	stats.TotalStorageBytes = metaBytes

	ids, err := s.sidecars.List(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	for _, id := range ids {
		size, err := s.sidecars.Size(ctx, id)
		if err != nil {
			logger.Warn("sizing sidecar %s: %v", id, err)
			continue
		}
		stats.TotalStorageBytes += size
	}
	return stats, nil
}

// List returns all documents in insertion order.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.meta.List(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	return docs, nil
}

// Info returns a document together with its sidecar size.
func (s *DocumentService) Info(ctx context.Context, id string) (*domain.DocumentInfo, error) {
	if !domain.IsValidDocID(id) {
		return nil, fmt.Errorf("%w: document %q", domain.ErrNotFound, id)
	}
	doc, err := s.meta.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	size, err := s.sidecars.Size(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	return &domain.DocumentInfo{Document: *doc, StorageBytes: size}, nil
}

// SupportedFormats returns the file extensions that can be ingested.
func (s *DocumentService) SupportedFormats() []string {
	return s.registry.Extensions()
}

// storageErr makes sure err carries domain.ErrStorageIO.
func storageErr(err error) error {
	if err == nil || errors.Is(err, domain.ErrStorageIO) || errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStorageIO, err)
}
