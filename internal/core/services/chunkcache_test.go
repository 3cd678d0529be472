package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docctx/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docctx/internal/core/domain"
)

func seedDocument(t *testing.T, meta *memory.MetadataStore, sidecars *memory.SidecarStore, content string) string {
	t.Helper()
	ctx := context.Background()
	id := domain.NewDocID([]byte(content))
	chunks := []domain.Chunk{{DocumentID: id, Text: content, End: len(content), Length: len(content)}}
	require.NoError(t, sidecars.Write(ctx, id, chunks))
	require.NoError(t, meta.Put(ctx, domain.Document{ID: id, Filename: content + ".txt", ChunkCount: 1}))
	return id
}

func TestChunkCache_LoadsOnce(t *testing.T) {
	ctx := context.Background()
	meta, sidecars := memory.NewMetadataStore(), memory.NewSidecarStore()
	id := seedDocument(t, meta, sidecars, "alpha")
	cache := NewChunkCache(meta, sidecars)

	assert.False(t, cache.Loaded(id))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			chunks, err := cache.Get(ctx, id)
			assert.NoError(t, err)
			assert.Len(t, chunks, 1)
		}()
	}
	wg.Wait()

	assert.True(t, cache.Loaded(id))
	assert.LessOrEqual(t, sidecars.ReadCount(id), 20)

	before := sidecars.ReadCount(id)
	_, err := cache.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before, sidecars.ReadCount(id))
}

func TestChunkCache_SingleflightDeduplicatesConcurrentLoads(t *testing.T) {
	ctx := context.Background()
	meta, sidecars := memory.NewMetadataStore(), memory.NewSidecarStore()
	id := seedDocument(t, meta, sidecars, "alpha")
	cache := NewChunkCache(meta, sidecars)

	release := make(chan struct{})
	entered := make(chan struct{}, 10)
	sidecars.BeforeRead = func(string) {
		entered <- struct{}{}
		<-release
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Get(ctx, id)
			assert.NoError(t, err)
		}()
	}

	<-entered
	// Give the other callers time to join the in-flight load.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, sidecars.ReadCount(id))
}

func TestChunkCache_UnknownDocument(t *testing.T) {
	cache := NewChunkCache(memory.NewMetadataStore(), memory.NewSidecarStore())

	_, err := cache.Get(context.Background(), "0123456789abcdef")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChunkCache_MissingSidecarIsEmpty(t *testing.T) {
	ctx := context.Background()
	meta, sidecars := memory.NewMetadataStore(), memory.NewSidecarStore()
	id := seedDocument(t, meta, sidecars, "alpha")
	require.NoError(t, sidecars.Delete(ctx, id))
	cache := NewChunkCache(meta, sidecars)

	chunks, err := cache.Get(ctx, id)

	require.NoError(t, err)
	assert.Empty(t, chunks)
	assert.True(t, cache.Loaded(id))
}

func TestChunkCache_ZeroByteSidecarIsEmpty(t *testing.T) {
	ctx := context.Background()
	meta, sidecars := memory.NewMetadataStore(), memory.NewSidecarStore()
	id := seedDocument(t, meta, sidecars, "alpha")
	sidecars.PutRaw(id, nil)

	chunks, err := NewChunkCache(meta, sidecars).Get(ctx, id)

	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkCache_ReadErrorIsStorageIO(t *testing.T) {
	ctx := context.Background()
	meta, sidecars := memory.NewMetadataStore(), memory.NewSidecarStore()
	id := seedDocument(t, meta, sidecars, "alpha")
	sidecars.FailReads(errors.New("disk gone"))
	cache := NewChunkCache(meta, sidecars)

	_, err := cache.Get(ctx, id)

	assert.ErrorIs(t, err, domain.ErrStorageIO)
	assert.False(t, cache.Loaded(id))
}

func TestChunkCache_LoadRacingRemovalIsDiscarded(t *testing.T) {
	ctx := context.Background()
	meta, sidecars := memory.NewMetadataStore(), memory.NewSidecarStore()
	id := seedDocument(t, meta, sidecars, "alpha")
	cache := NewChunkCache(meta, sidecars)

	started := make(chan struct{})
	release := make(chan struct{})
	sidecars.BeforeRead = func(string) {
		close(started)
		<-release
	}

	done := make(chan error, 1)
	go func() {
		_, err := cache.Get(ctx, id)
		done <- err
	}()

	<-started
	removed, err := meta.Remove(ctx, id)
	require.NoError(t, err)
	require.True(t, removed)
	require.NoError(t, cache.Evict(ctx, id))
	close(release)

	assert.ErrorIs(t, <-done, domain.ErrNotFound)
	assert.False(t, cache.Loaded(id))
}

func TestChunkCache_LoadRacingMetadataRemovalOnly(t *testing.T) {
	ctx := context.Background()
	meta, sidecars := memory.NewMetadataStore(), memory.NewSidecarStore()
	id := seedDocument(t, meta, sidecars, "alpha")
	cache := NewChunkCache(meta, sidecars)

	started := make(chan struct{})
	release := make(chan struct{})
	sidecars.BeforeRead = func(string) {
		close(started)
		<-release
	}

	done := make(chan error, 1)
	go func() {
		_, err := cache.Get(ctx, id)
		done <- err
	}()

	<-started
	_, err := meta.Remove(ctx, id)
	require.NoError(t, err)
	close(release)

	assert.ErrorIs(t, <-done, domain.ErrNotFound)
	assert.False(t, cache.Loaded(id))
}

func TestChunkCache_PutDuringLoadWins(t *testing.T) {
	ctx := context.Background()
	meta, sidecars := memory.NewMetadataStore(), memory.NewSidecarStore()
	id := seedDocument(t, meta, sidecars, "alpha")
	cache := NewChunkCache(meta, sidecars)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	sidecars.BeforeRead = func(string) {
		once.Do(func() {
			close(started)
			<-release
		})
	}

	done := make(chan []domain.Chunk, 1)
	go func() {
		chunks, _ := cache.Get(ctx, id)
		done <- chunks
	}()

	<-started
	fresh := []domain.Chunk{{DocumentID: id, Text: "fresh"}, {DocumentID: id, Position: 1, Text: "more"}}
	require.NoError(t, cache.Put(ctx, id, fresh))
	close(release)

	assert.Len(t, <-done, 2)
	chunks, err := cache.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, fresh, chunks)
}

func TestChunkCache_PutWriteFailure(t *testing.T) {
	ctx := context.Background()
	sidecars := memory.NewSidecarStore()
	sidecars.FailWrites(errors.New("no space"))
	cache := NewChunkCache(memory.NewMetadataStore(), sidecars)

	err := cache.Put(ctx, "0123456789abcdef", nil)

	assert.ErrorIs(t, err, domain.ErrStorageIO)
	assert.False(t, cache.Loaded("0123456789abcdef"))
}

func TestChunkCache_EvictAll(t *testing.T) {
	ctx := context.Background()
	meta, sidecars := memory.NewMetadataStore(), memory.NewSidecarStore()
	a := seedDocument(t, meta, sidecars, "alpha")
	b := seedDocument(t, meta, sidecars, "beta")
	cache := NewChunkCache(meta, sidecars)
	_, err := cache.Get(ctx, a)
	require.NoError(t, err)

	require.NoError(t, cache.EvictAll(ctx))

	assert.Zero(t, cache.Len())
	ids, err := sidecars.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.False(t, cache.Loaded(b))
}
