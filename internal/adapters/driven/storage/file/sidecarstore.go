package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/docctx/internal/core/domain"
	"github.com/custodia-labs/docctx/internal/core/ports/driven"
)

// Ensure SidecarStore implements the interface.
var _ driven.SidecarStore = (*SidecarStore)(nil)

// SidecarSuffix is appended to a document ID to name its chunk sidecar.
const SidecarSuffix = "_chunks.json"

// SidecarStore keeps one JSON chunk file per document.
// It holds no state of its own; callers serialise access per document.
type SidecarStore struct {
	dir string
}

// NewSidecarStore creates a sidecar store rooted at dir.
func NewSidecarStore(dir string) (*SidecarStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating storage directory: %v", domain.ErrStorageIO, err)
	}
	return &SidecarStore{dir: dir}, nil
}

// Dir returns the storage directory.
func (s *SidecarStore) Dir() string {
	return s.dir
}

func (s *SidecarStore) path(id string) (string, error) {
	if !domain.IsValidDocID(id) {
		return "", fmt.Errorf("%w: document id %q", domain.ErrInvalidInput, id)
	}
	return filepath.Join(s.dir, id+SidecarSuffix), nil
}

// Write replaces the sidecar for id and syncs it.
func (s *SidecarStore) Write(_ context.Context, id string, chunks []domain.Chunk) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	data, err := json.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("%w: encoding chunks for %s: %v", domain.ErrStorageIO, id, err)
	}
	if err := writeDurable(path, data); err != nil {
		return fmt.Errorf("%w: writing %s: %v", domain.ErrStorageIO, path, err)
	}
	return nil
}

// Read loads the sidecar for id. A zero-byte sidecar holds no chunks.
func (s *SidecarStore) Read(_ context.Context, id string) ([]domain.Chunk, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrStorageIO, path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []domain.Chunk{}, nil
	}

	var chunks []domain.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrStorageIO, path, err)
	}
	return chunks, nil
}

// Delete removes the sidecar for id.
func (s *SidecarStore) Delete(_ context.Context, id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: deleting %s: %v", domain.ErrStorageIO, path, err)
	}
	return nil
}

// List returns the IDs of all well-formed sidecars in the directory, sorted.
func (s *SidecarStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: listing %s: %v", domain.ErrStorageIO, s.dir, err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ok := strings.CutSuffix(entry.Name(), SidecarSuffix)
		if !ok || !domain.IsValidDocID(id) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Size returns the sidecar size in bytes. A missing sidecar is zero.
func (s *SidecarStore) Size(_ context.Context, id string) (int64, error) {
	path, err := s.path(id)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", domain.ErrStorageIO, err)
	}
	return info.Size(), nil
}
