package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docctx/internal/core/domain"
	"github.com/custodia-labs/docctx/internal/core/ports/driven"
)

// Ensure MetadataStore implements the interface.
var _ driven.MetadataStore = (*MetadataStore)(nil)

// MetadataStore is an in-memory implementation of driven.MetadataStore.
type MetadataStore struct {
	mu      sync.RWMutex
	docs    map[string]domain.Document
	nextSeq int64
	putErr  error
}

// NewMetadataStore creates a new in-memory metadata store.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{
		docs:    make(map[string]domain.Document),
		nextSeq: 1,
	}
}

// FailPuts makes every subsequent Put return err. Nil restores success.
func (s *MetadataStore) FailPuts(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putErr = err
}

// Put stores or replaces a document record, keeping an existing sequence.
func (s *MetadataStore) Put(_ context.Context, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	if prev, ok := s.docs[doc.ID]; ok {
		doc.Sequence = prev.Sequence
	} else {
		doc.Sequence = s.nextSeq
		s.nextSeq++
	}
	s.docs[doc.ID] = doc
	return nil
}

// Get retrieves a document record.
func (s *MetadataStore) Get(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// Has reports whether a record exists for id.
func (s *MetadataStore) Has(_ context.Context, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[id]
	return ok
}

// Remove deletes a record.
func (s *MetadataStore) Remove(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return false, nil
	}
	delete(s.docs, id)
	return true, nil
}

// List returns all records in insertion order.
func (s *MetadataStore) List(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Sequence < docs[j].Sequence })
	return docs, nil
}

// Clear removes all records.
func (s *MetadataStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]domain.Document)
	return nil
}

// StorageBytes is always zero for the memory store.
func (s *MetadataStore) StorageBytes() (int64, error) {
	return 0, nil
}
