package docx

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

// writeTestDOCX creates a minimal DOCX archive on disk.
func writeTestDOCX(t *testing.T, documentXML string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.docx")
	f, err := os.Create(path)
	require.NoError(t, err)

	w := zip.NewWriter(f)
	contentTypes, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Types/>`))
	require.NoError(t, err)

	if documentXML != "" {
		doc, err := w.Create("word/document.xml")
		require.NoError(t, err)
		_, err = doc.Write([]byte(documentXML))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return path
}

func TestExtensions(t *testing.T) {
	e := New()
	assert.Equal(t, "docx", e.Name())
	assert.Equal(t, []string{".docx"}, e.Extensions())
}

func TestExtract_Paragraphs(t *testing.T) {
	path := writeTestDOCX(t, `<?xml version="1.0" encoding="UTF-8"?>
<w:document `+wordNS+`><w:body>
<w:p><w:r><w:t>Quarterly report</w:t></w:r></w:p>
<w:p><w:r><w:t>The Engineering </w:t></w:r><w:r><w:t>department grew.</w:t></w:r></w:p>
</w:body></w:document>`)

	text, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "Quarterly report\nThe Engineering department grew.", text)
}

func TestExtract_MissingDocumentPart(t *testing.T) {
	path := writeTestDOCX(t, "")

	_, err := New().Extract(context.Background(), path)

	assert.ErrorIs(t, err, ErrNoDocumentPart)
}

func TestExtract_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.docx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0600))

	_, err := New().Extract(context.Background(), path)

	assert.Error(t, err)
}
