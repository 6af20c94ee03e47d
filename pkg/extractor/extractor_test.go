package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesquest-be/internal/apperror"
	"notesquest-be/internal/constant"
)

func TestDecidePlainText(t *testing.T) {
	e := New()
	result, err := e.Decide(context.Background(), []byte("Photosynthesis converts light into chemical energy.\n"), "txt")

	require.NoError(t, err)
	assert.Equal(t, constant.ExtractionMethodDirect, result.Method)
	assert.Equal(t, "Photosynthesis converts light into chemical energy.", result.Text)
	assert.False(t, result.Degraded)
}

func TestDecideMarkdown(t *testing.T) {
	e := New()
	result, err := e.Decide(context.Background(), []byte("# Notes\n\nMitosis has four phases."), "md")

	require.NoError(t, err)
	assert.Equal(t, constant.ExtractionMethodDirect, result.Method)
}

func TestDecideMimeTypes(t *testing.T) {
	e := New()
	result, err := e.Decide(context.Background(), []byte("content type routing works"), "text/plain")

	require.NoError(t, err)
	assert.Equal(t, constant.ExtractionMethodDirect, result.Method)
}

func TestDecideEmptyFile(t *testing.T) {
	e := New()
	_, err := e.Decide(context.Background(), []byte("   \n"), "txt")

	var failed *apperror.IngestionFailed
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "decode", failed.Stage)
}

func TestDecideUnsupportedType(t *testing.T) {
	e := New()
	_, err := e.Decide(context.Background(), []byte("binary"), "docx")

	var failed *apperror.IngestionFailed
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "decide", failed.Stage)
	assert.Contains(t, err.Error(), "unsupported file type")
	assert.Contains(t, err.Error(), "supported: pdf, txt, md")
}

func TestDecideExtensionWithDot(t *testing.T) {
	e := New()
	result, err := e.Decide(context.Background(), []byte("leading dots are tolerated"), ".txt")

	require.NoError(t, err)
	assert.Equal(t, constant.ExtractionMethodDirect, result.Method)
}

func TestNormalizeType(t *testing.T) {
	cases := map[string]string{
		"application/pdf": "pdf",
		"text/plain":      "txt",
		"text/markdown":   "md",
		"image/jpeg":      "jpeg",
		"image/jpg":       "jpeg",
		"PDF":             "pdf",
		".md":             "md",
	}
	for input, expected := range cases {
		assert.Equal(t, expected, normalizeType(input), "input %q", input)
	}
}

func TestPageMarker(t *testing.T) {
	assert.Equal(t, "--- Page 3 ---", PageMarker(3))
}
