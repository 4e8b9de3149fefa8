package util

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidFormat(t *testing.T) {
	assert.True(t, ValidFormat("cv.pdf"))
	assert.True(t, ValidFormat("Report.DOCX"))
	assert.True(t, ValidFormat("notes.txt"))
	assert.True(t, ValidFormat("readme.md"))
	assert.False(t, ValidFormat("photo.png"))
	assert.False(t, ValidFormat("archive.zip"))
	assert.False(t, ValidFormat("noextension"))
}

func TestExtractTextPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.txt")
	require.NoError(t, os.WriteFile(path, []byte("  Backend engineer, 4 years.  \n"), 0o644))

	text, err := ExtractText(path)
	require.NoError(t, err)
	assert.Equal(t, "Backend engineer, 4 years.", text)
}

func TestExtractTextMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, os.WriteFile(path, []byte("# Project Report\n\nBuilt a service."), 0o644))

	text, err := ExtractText(path)
	require.NoError(t, err)
	assert.Contains(t, text, "Project Report")
	assert.Contains(t, text, "Built a service.")
}

func TestExtractTextUnsupportedFormat(t *testing.T) {
	_, err := ExtractText("document.odt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtractTextEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("   \n\t  "), 0o644))

	_, err := ExtractText(path)
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtractTextDOCX(t *testing.T) {
	path := writeDOCX(t, `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
  </w:body>
</w:document>`)

	text, err := ExtractText(path)
	require.NoError(t, err)
	assert.Contains(t, text, "First paragraph.")
	assert.Contains(t, text, "Second paragraph.")
}

func TestExtractTextDOCXMissingDocumentPart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	entry, err := w.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = entry.Write([]byte("<styles/>"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	_, err = ExtractText(path)
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtractTextDOCXNotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.docx")
	require.NoError(t, os.WriteFile(path, []byte("plain text pretending"), 0o644))

	_, err := ExtractText(path)
	assert.ErrorIs(t, err, ErrExtraction)
}

func writeDOCX(t *testing.T, documentXML string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	entry, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = entry.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return path
}
