package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/custodia-labs/docctx/internal/core/domain"
	"github.com/custodia-labs/docctx/internal/core/ports/driven"
)

// Ensure SidecarStore implements the interface.
var _ driven.SidecarStore = (*SidecarStore)(nil)

// SidecarStore is an in-memory implementation of driven.SidecarStore.
// Chunks are held in their JSON encoding so Size reports realistic numbers.
type SidecarStore struct {
	mu       sync.RWMutex
	files    map[string][]byte
	reads    map[string]int
	writeErr error
	readErr  error

	// BeforeRead, if set, runs at the start of every Read outside the lock.
	// Tests use it to hold a load open while other operations run.
	BeforeRead func(id string)
}

// NewSidecarStore creates a new in-memory sidecar store.
func NewSidecarStore() *SidecarStore {
	return &SidecarStore{
		files: make(map[string][]byte),
		reads: make(map[string]int),
	}
}

// FailWrites makes every subsequent Write return err. Nil restores success.
func (s *SidecarStore) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// FailReads makes every subsequent Read return err. Nil restores success.
func (s *SidecarStore) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

// PutRaw stores raw sidecar bytes for id, bypassing encoding.
func (s *SidecarStore) PutRaw(id string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[id] = data
}

// ReadCount returns how many times Read was called for id.
func (s *SidecarStore) ReadCount(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reads[id]
}

// Write replaces the sidecar for id.
func (s *SidecarStore) Write(_ context.Context, id string, chunks []domain.Chunk) error {
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	data, err := json.Marshal(chunks)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.files[id] = data
	return nil
}

// Read loads the sidecar for id.
func (s *SidecarStore) Read(_ context.Context, id string) ([]domain.Chunk, error) {
	if s.BeforeRead != nil {
		s.BeforeRead(id)
	}

	s.mu.Lock()
	s.reads[id]++
	data, ok := s.files[id]
	readErr := s.readErr
	s.mu.Unlock()

	if readErr != nil {
		return nil, readErr
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	if len(data) == 0 {
		return []domain.Chunk{}, nil
	}
	var chunks []domain.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, domain.ErrStorageIO
	}
	return chunks, nil
}

// Delete removes the sidecar for id.
func (s *SidecarStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, id)
	return nil
}

// List returns the IDs of all stored sidecars, sorted.
func (s *SidecarStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.files))
	for id := range s.files {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Size returns the encoded size of the sidecar for id.
func (s *SidecarStore) Size(_ context.Context, id string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.files[id])), nil
}
