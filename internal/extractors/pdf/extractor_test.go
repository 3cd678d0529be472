package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtensions(t *testing.T) {
	e := New()
	assert.Equal(t, "pdf", e.Name())
	assert.Equal(t, []string{".pdf"}, e.Extensions())
}

func TestExtract_InvalidPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 definitely not a pdf"), 0600))

	text, err := New().Extract(context.Background(), path)

	assert.Error(t, err)
	assert.Empty(t, text)
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "none.pdf"))
	assert.Error(t, err)
}
