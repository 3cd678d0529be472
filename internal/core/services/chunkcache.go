package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/docctx/internal/core/domain"
	"github.com/custodia-labs/docctx/internal/core/ports/driven"
	"github.com/custodia-labs/docctx/internal/logger"
)

// ChunkCache memoises chunk sequences in memory, loading each document's
// sidecar at most once per residency.
//
// A load only commits its result if the document is still present in the
// metadata store and no Put or Evict for the same id happened while it ran.
// Every Put and Evict bumps the id's epoch and EvictAll bumps the generation;
// a load compares both against the values it started with before committing.
type ChunkCache struct {
	meta     driven.MetadataStore
	sidecars driven.SidecarStore
	group    singleflight.Group

	mu         sync.Mutex
	entries    map[string][]domain.Chunk
	epochs     map[string]uint64
	generation uint64
}

// NewChunkCache creates an empty cache over the given stores.
func NewChunkCache(meta driven.MetadataStore, sidecars driven.SidecarStore) *ChunkCache {
	return &ChunkCache{
		meta:     meta,
		sidecars: sidecars,
		entries:  make(map[string][]domain.Chunk),
		epochs:   make(map[string]uint64),
	}
}

// Get returns the chunks for a live document, loading the sidecar on first access.
// Returns domain.ErrNotFound if the document is not in the metadata store.
func (c *ChunkCache) Get(ctx context.Context, id string) ([]domain.Chunk, error) {
	if !c.meta.Has(ctx, id) {
		return nil, domain.ErrNotFound
	}

	c.mu.Lock()
	chunks, ok := c.entries[id]
	c.mu.Unlock()
	if ok {
		return chunks, nil
	}

	v, err, _ := c.group.Do(id, func() (any, error) {
		return c.load(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Chunk), nil
}

// load reads the sidecar and commits it if still valid.
func (c *ChunkCache) load(ctx context.Context, id string) ([]domain.Chunk, error) {
	c.mu.Lock()
	if chunks, ok := c.entries[id]; ok {
		c.mu.Unlock()
		return chunks, nil
	}
	epoch, generation := c.epochs[id], c.generation
	c.mu.Unlock()

	chunks, err := c.sidecars.Read(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if !c.meta.Has(ctx, id) {
			return nil, domain.ErrNotFound
		}
		logger.Warn("document %s has no chunk sidecar; treating it as empty", id)
		chunks = []domain.Chunk{}
	case err != nil:
		if errors.Is(err, domain.ErrStorageIO) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: loading chunks for %s: %v", domain.ErrStorageIO, id, err)
	}
	if chunks == nil {
		chunks = []domain.Chunk{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epochs[id] != epoch || c.generation != generation {
		// A Put or Evict ran meanwhile; its state wins.
		if current, ok := c.entries[id]; ok {
			return current, nil
		}
		logger.Debug("discarding stale chunk load for %s", id)
		return nil, domain.ErrNotFound
	}
	if !c.meta.Has(ctx, id) {
		logger.Debug("discarding chunk load for removed document %s", id)
		return nil, domain.ErrNotFound
	}
	c.entries[id] = chunks
	return chunks, nil
}

// Put writes the sidecar durably and then caches chunks for id.
func (c *ChunkCache) Put(ctx context.Context, id string, chunks []domain.Chunk) error {
	if err := c.sidecars.Write(ctx, id, chunks); err != nil {
		if errors.Is(err, domain.ErrStorageIO) || errors.Is(err, domain.ErrInvalidInput) {
			return err
		}
		return fmt.Errorf("%w: writing chunks for %s: %v", domain.ErrStorageIO, id, err)
	}
	if chunks == nil {
		chunks = []domain.Chunk{}
	}

	c.mu.Lock()
	c.entries[id] = chunks
	c.epochs[id]++
	c.mu.Unlock()
	c.group.Forget(id)
	return nil
}

// Evict drops the cached entry for id and deletes its sidecar.
func (c *ChunkCache) Evict(ctx context.Context, id string) error {
	c.mu.Lock()
	delete(c.entries, id)
	c.epochs[id]++
	c.mu.Unlock()
	c.group.Forget(id)

	return c.sidecars.Delete(ctx, id)
}

// EvictAll drops every cached entry and deletes every sidecar in storage.
// Deletion continues past individual failures; all of them are returned.
func (c *ChunkCache) EvictAll(ctx context.Context) error {
	c.mu.Lock()
	for id := range c.entries {
		c.group.Forget(id)
	}
	c.entries = make(map[string][]domain.Chunk)
	c.generation++
	c.mu.Unlock()

	ids, err := c.sidecars.List(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, id := range ids {
		c.group.Forget(id)
		if err := c.sidecars.Delete(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("deleting sidecar %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// Loaded reports whether id is resident in memory.
func (c *ChunkCache) Loaded(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}

// Len returns the number of resident documents.
func (c *ChunkCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
