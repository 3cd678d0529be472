package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataBackend_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		backend  MetadataBackend
		expected bool
	}{
		{"file is valid", MetadataBackendFile, true},
		{"sqlite is valid", MetadataBackendSQLite, true},
		{"empty string is invalid", MetadataBackend(""), false},
		{"unknown is invalid", MetadataBackend("redis"), false},
		{"case matters", MetadataBackend("SQLite"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.backend.IsValid())
		})
	}
}

func TestMetadataBackend_Description(t *testing.T) {
	assert.Contains(t, MetadataBackendFile.Description(), "metadata.json")
	assert.Contains(t, MetadataBackendSQLite.Description(), "SQLite")
	assert.Equal(t, "Unknown", MetadataBackend("x").Description())
	assert.Equal(t, "file", MetadataBackendFile.String())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, MetadataBackendFile, s.Storage.MetadataBackend)
	assert.Empty(t, s.Storage.Dir)
	assert.Equal(t, 1000, s.Chunking.Window)
	assert.Equal(t, 200, s.Chunking.Overlap)
	assert.Equal(t, 1000, s.Chunking.MaxChunks)
	assert.Equal(t, 100, s.Chunking.Lookback)
	assert.Equal(t, int64(50*1024*1024), s.Ingest.MaxFileBytes)
	assert.Equal(t, 2_000_000, s.Ingest.MaxTextChars)
	assert.Equal(t, 30*time.Second, s.Ingest.ExtractTimeout)
	assert.Equal(t, 4, s.Ingest.Concurrency)
	assert.Equal(t, 3, s.Retrieval.MaxResults)
	assert.InDelta(t, 2.0, s.Watch.RatePerSecond, 0)

	require.NoError(t, s.Validate())
}

func TestAppSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*AppSettings)
	}{
		{"unknown backend", func(s *AppSettings) { s.Storage.MetadataBackend = "redis" }},
		{"zero window", func(s *AppSettings) { s.Chunking.Window = 0 }},
		{"negative overlap", func(s *AppSettings) { s.Chunking.Overlap = -1 }},
		{"overlap equal to window", func(s *AppSettings) { s.Chunking.Overlap = s.Chunking.Window }},
		{"zero max chunks", func(s *AppSettings) { s.Chunking.MaxChunks = 0 }},
		{"zero max file bytes", func(s *AppSettings) { s.Ingest.MaxFileBytes = 0 }},
		{"zero timeout", func(s *AppSettings) { s.Ingest.ExtractTimeout = 0 }},
		{"zero max results", func(s *AppSettings) { s.Retrieval.MaxResults = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultAppSettings()
			tt.modify(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidInput)
		})
	}

	t.Run("zero overlap is valid", func(t *testing.T) {
		s := DefaultAppSettings()
		s.Chunking.Overlap = 0
		assert.NoError(t, s.Validate())
	})
}
