package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/custodia-labs/docctx/internal/core/domain"
	"github.com/custodia-labs/docctx/internal/core/ports/driven"
)

// Ensure MetadataStore implements the interface.
var _ driven.MetadataStore = (*MetadataStore)(nil)

// MetadataFileName is the name of the index file inside the storage directory.
const MetadataFileName = "metadata.json"

const indexVersion = 1

// indexFile is the on-disk shape of metadata.json.
type indexFile struct {
	Version   int                        `json:"version"`
	Documents map[string]domain.Document `json:"documents"`
}

// MetadataStore keeps every document record in a single JSON index.
// The index is loaded once at construction and rewritten on each mutation.
type MetadataStore struct {
	mu      sync.RWMutex
	path    string
	docs    map[string]domain.Document
	nextSeq int64
}

// NewMetadataStore opens the index in dir, creating the directory if needed.
// A missing index starts empty; an unreadable one is an error so that it is
// never silently overwritten.
func NewMetadataStore(dir string) (*MetadataStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating storage directory: %v", domain.ErrStorageIO, err)
	}

	s := &MetadataStore{
		path:    filepath.Join(dir, MetadataFileName),
		docs:    make(map[string]domain.Document),
		nextSeq: 1,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the index file path.
func (s *MetadataStore) Path() string {
	return s.path
}

func (s *MetadataStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: reading %s: %v", domain.ErrStorageIO, s.path, err)
	}
	if len(data) == 0 {
		return nil
	}

	var idx indexFile
	if err := json.Unmarshal(data, &idx); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", domain.ErrStorageIO, s.path, err)
	}

	docs := make([]domain.Document, 0, len(idx.Documents))
	for id, doc := range idx.Documents {
		doc.ID = id
		docs = append(docs, doc)
	}
	// Records written without a sequence are ordered after sequenced ones
	// by ingestion time.
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		if (a.Sequence == 0) != (b.Sequence == 0) {
			return a.Sequence != 0
		}
		if a.Sequence != b.Sequence {
			return a.Sequence < b.Sequence
		}
		if !a.IngestedAt.Equal(b.IngestedAt) {
			return a.IngestedAt.Before(b.IngestedAt)
		}
		return a.ID < b.ID
	})
	for _, doc := range docs {
		if doc.Sequence >= s.nextSeq {
			s.nextSeq = doc.Sequence + 1
		}
	}
	for _, doc := range docs {
		if doc.Sequence == 0 {
			doc.Sequence = s.nextSeq
			s.nextSeq++
		}
		s.docs[doc.ID] = doc
	}
	return nil
}

// persist writes the index (caller must hold the write lock).
func (s *MetadataStore) persist() error {
	data, err := json.MarshalIndent(indexFile{Version: indexVersion, Documents: s.docs}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding index: %v", domain.ErrStorageIO, err)
	}
	if err := writeDurable(s.path, data); err != nil {
		return fmt.Errorf("%w: writing %s: %v", domain.ErrStorageIO, s.path, err)
	}
	return nil
}

// Put stores or replaces a document record.
func (s *MetadataStore) Put(_ context.Context, doc domain.Document) error {
	if !domain.IsValidDocID(doc.ID) {
		return fmt.Errorf("%w: document id %q", domain.ErrInvalidInput, doc.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.docs[doc.ID]
	if existed {
		doc.Sequence = prev.Sequence
	} else {
		doc.Sequence = s.nextSeq
	}
	s.docs[doc.ID] = doc

	if err := s.persist(); err != nil {
		if existed {
			s.docs[doc.ID] = prev
		} else {
			delete(s.docs, doc.ID)
		}
		return err
	}
	if !existed {
		s.nextSeq++
	}
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

	prev, ok := s.docs[id]
	if !ok {
		return false, nil
	}
	delete(s.docs, id)
	if err := s.persist(); err != nil {
		s.docs[id] = prev
		return false, err
	}
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

	prev := s.docs
	s.docs = make(map[string]domain.Document)
	if err := s.persist(); err != nil {
		s.docs = prev
		return err
	}
	return nil
}

// StorageBytes returns the size of metadata.json. A missing index is zero.
func (s *MetadataStore) StorageBytes() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", domain.ErrStorageIO, err)
	}
	return info.Size(), nil
}
