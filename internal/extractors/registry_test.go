package extractors

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docctx/internal/core/domain"
)

// mockExtractor is a testify mock of driven.Extractor.
type mockExtractor struct {
	mock.Mock
	exts  []string
	delay time.Duration
}

func (m *mockExtractor) Name() string { return "mock" }

func (m *mockExtractor) Extensions() []string { return m.exts }

func (m *mockExtractor) Extract(ctx context.Context, path string) (string, error) {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

func TestRegistry_Unsupported(t *testing.T) {
	r := NewRegistry()

	_, err := r.Extract(context.Background(), "/tmp/a.xyz", ".xyz")

	assert.ErrorIs(t, err, domain.ErrUnsupported)
	assert.False(t, r.Supports(".xyz"))
}

func TestRegistry_ExtensionMatchingIsCaseInsensitive(t *testing.T) {
	m := &mockExtractor{exts: []string{".TXT"}}
	m.On("Extract", mock.Anything, "/docs/a.TxT").Return("hello", nil)

	r := NewRegistry()
	r.Register(m)

	assert.True(t, r.Supports(".txt"))
	assert.True(t, r.Supports("TXT"))

	text, err := r.Extract(context.Background(), "/docs/a.TxT", ".TxT")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	m.AssertExpectations(t)
}

func TestRegistry_FailureIsWrapped(t *testing.T) {
	m := &mockExtractor{exts: []string{".bin"}}
	m.On("Extract", mock.Anything, "x.bin").Return("", errors.New("bad header"))

	r := NewRegistry()
	r.Register(m)

	_, err := r.Extract(context.Background(), "x.bin", ".bin")

	require.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "bad header")
}

func TestRegistry_Timeout(t *testing.T) {
	m := &mockExtractor{exts: []string{".slow"}, delay: 500 * time.Millisecond}
	m.On("Extract", mock.Anything, "x.slow").Return("late", nil).Maybe()

	r := NewRegistry(WithTimeout(20 * time.Millisecond))
	r.Register(m)

	start := time.Now()
	_, err := r.Extract(context.Background(), "x.slow", ".slow")

	assert.ErrorIs(t, err, domain.ErrExtractionTimeout)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestRegistry_Truncates(t *testing.T) {
	m := &mockExtractor{exts: []string{".txt"}}
	m.On("Extract", mock.Anything, "x.txt").Return("héllo wörld", nil)

	r := NewRegistry(WithMaxChars(5))
	r.Register(m)

	text, err := r.Extract(context.Background(), "x.txt", ".txt")

	require.NoError(t, err)
	assert.Equal(t, "héllo", text)
}

func TestRegistry_NoTruncationWhenDisabled(t *testing.T) {
	long := strings.Repeat("a", 100)
	m := &mockExtractor{exts: []string{".txt"}}
	m.On("Extract", mock.Anything, "x.txt").Return(long, nil)

	r := NewRegistry(WithMaxChars(0))
	r.Register(m)

	text, err := r.Extract(context.Background(), "x.txt", ".txt")

	require.NoError(t, err)
	assert.Equal(t, long, text)
}

func TestDefaultRegistry_Extensions(t *testing.T) {
	exts := NewDefaultRegistry().Extensions()

	for _, want := range []string{".txt", ".md", ".html", ".htm", ".csv", ".tsv", ".docx", ".pdf"} {
		assert.Contains(t, exts, want)
	}
	assert.NotContains(t, exts, ".xlsx")
	assert.IsNonDecreasing(t, exts)
}

func TestDefaultRegistry_ExtractsPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("The Engineering department."), 0600))

	text, err := FromSettings(domain.DefaultAppSettings().Ingest).Extract(context.Background(), path, ".txt")

	require.NoError(t, err)
	assert.Equal(t, "The Engineering department.", text)
}

func TestNormaliseExt(t *testing.T) {
	assert.Equal(t, ".pdf", normaliseExt("PDF"))
	assert.Equal(t, ".pdf", normaliseExt(" .Pdf "))
	assert.Equal(t, "", normaliseExt(""))
}
