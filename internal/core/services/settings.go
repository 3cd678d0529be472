package services

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docctx/internal/core/domain"
	"github.com/custodia-labs/docctx/internal/core/ports/driven"
	"github.com/custodia-labs/docctx/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyStorageDir        = "storage.dir"
	KeyMetadataBackend   = "storage.metadata_backend"
	KeyChunkWindow       = "chunking.window"
	KeyChunkOverlap      = "chunking.overlap"
	KeyChunkMax          = "chunking.max_chunks"
	KeyChunkLookback     = "chunking.lookback"
	KeyMaxFileBytes      = "ingest.max_file_bytes"
	KeyMaxTextChars      = "ingest.max_text_chars"
	KeyExtractTimeout    = "ingest.extract_timeout_seconds"
	KeyIngestConcurrency = "ingest.concurrency"
	KeyMaxResults        = "retrieval.max_results"
	KeyWatchRate         = "watch.rate_per_second"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
)

// settingKeys maps every recognised key to the type it is stored as.
var settingKeys = map[string]valueKind{
	KeyStorageDir:        kindString,
	KeyMetadataBackend:   kindString,
	KeyChunkWindow:       kindInt,
	KeyChunkOverlap:      kindInt,
	KeyChunkMax:          kindInt,
	KeyChunkLookback:     kindInt,
	KeyMaxFileBytes:      kindInt,
	KeyMaxTextChars:      kindInt,
	KeyExtractTimeout:    kindInt,
	KeyIngestConcurrency: kindInt,
	KeyMaxResults:        kindInt,
	KeyWatchRate:         kindFloat,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	homeDir     string
}

// NewSettingsService creates a new settings service.
// homeDir anchors the default storage directory (<home>/documents).
func NewSettingsService(configStore driven.ConfigStore, homeDir string) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		homeDir:     homeDir,
	}
}

// Get retrieves current application settings. Unset or unusable values fall
// back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := domain.DefaultAppSettings()
	settings.Storage.Dir = filepath.Join(s.homeDir, "documents")
	s.apply(&settings, func(key string) (any, bool) { return s.configStore.Get(key) })
	return &settings, nil
}

// apply overlays stored values onto settings. Values of the wrong type or
// out of range are ignored.
func (s *SettingsService) apply(settings *domain.AppSettings, lookup func(string) (any, bool)) {
	if v, ok := stringValue(lookup, KeyStorageDir); ok && v != "" {
		settings.Storage.Dir = expandHome(v)
	}
	if v, ok := stringValue(lookup, KeyMetadataBackend); ok {
		if b := domain.MetadataBackend(strings.ToLower(v)); b.IsValid() {
			settings.Storage.MetadataBackend = b
		}
	}

	positive := func(key string, dst *int) {
		if v, ok := intValue(lookup, key); ok && v > 0 {
			*dst = v
		}
	}
	positive(KeyChunkWindow, &settings.Chunking.Window)
	positive(KeyChunkMax, &settings.Chunking.MaxChunks)
	positive(KeyChunkLookback, &settings.Chunking.Lookback)
	positive(KeyMaxTextChars, &settings.Ingest.MaxTextChars)
	positive(KeyIngestConcurrency, &settings.Ingest.Concurrency)
	positive(KeyMaxResults, &settings.Retrieval.MaxResults)

	if v, ok := intValue(lookup, KeyChunkOverlap); ok && v >= 0 {
		settings.Chunking.Overlap = v
	}
	if v, ok := intValue(lookup, KeyMaxFileBytes); ok && v > 0 {
		settings.Ingest.MaxFileBytes = int64(v)
	}
	if v, ok := intValue(lookup, KeyExtractTimeout); ok && v > 0 {
		settings.Ingest.ExtractTimeout = time.Duration(v) * time.Second
	}
	if v, ok := floatValue(lookup, KeyWatchRate); ok && v > 0 {
		settings.Watch.RatePerSecond = v
	}
}

// Set parses value for key, checks the resulting settings are consistent
// and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		if n < 0 || (n == 0 && key != KeyChunkOverlap) {
			return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("%w: %s must be a positive number", domain.ErrInvalidInput, key)
		}
		parsed = f
	default:
		parsed = value
	}

	if key == KeyMetadataBackend {
		backend := domain.MetadataBackend(strings.ToLower(value))
		if !backend.IsValid() {
			return fmt.Errorf("%w: unknown metadata backend %q (want %s or %s)",
				domain.ErrInvalidInput, value, domain.MetadataBackendFile, domain.MetadataBackendSQLite)
		}
		parsed = backend.String()
	}

	current, err := s.Get()
	if err != nil {
		return err
	}
	candidate := *current
	s.apply(&candidate, func(k string) (any, bool) {
		if k == key {
			return parsed, true
		}
		return nil, false
	})
	if err := candidate.Validate(); err != nil {
		return err
	}

	return s.configStore.Set(key, parsed)
}

// Keys returns all recognised setting keys, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringValue(lookup func(string) (any, bool), key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

func intValue(lookup func(string) (any, bool), key string) (int, bool) {
	v, ok := lookup(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func floatValue(lookup func(string) (any, bool), key string) (float64, bool) {
	v, ok := lookup(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := userHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
