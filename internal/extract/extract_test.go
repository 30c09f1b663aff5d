package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
)

func TestExtractPlainText(t *testing.T) {
	s := NewService()
	text, err := s.Extract(context.Background(), []byte("line one\r\nline two"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", text)
}

func TestExtractUnsupportedFormat(t *testing.T) {
	s := NewService()
	for _, mime := range []string{"image/png", "application/zip", "xlsx", "report.csv", ""} {
		_, err := s.Extract(context.Background(), []byte("data"), mime)
		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat, mime)
	}
}

func TestExtractParseFailure(t *testing.T) {
	s := NewService()
	_, err := s.Extract(context.Background(), []byte{0xff, 0xfe, 0x00, 0x01}, "txt")
	assert.ErrorIs(t, err, domain.ErrParseFailure)

	_, err = s.Extract(context.Background(), []byte("not a zip archive"), "docx")
	assert.ErrorIs(t, err, domain.ErrParseFailure)

	_, err = s.Extract(context.Background(), []byte("not a pdf"), "pdf")
	assert.ErrorIs(t, err, domain.ErrParseFailure)
}

func TestExtractDOCX(t *testing.T) {
	const documentXML = `<?xml version="1.0"?>
<document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <body>
    <p><r><t>First paragraph.</t></r></p>
    <p><r><t>Second </t></r><r><t>paragraph.</t></r></p>
  </body>
</document>`
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	s := NewService()
	text, err := s.Extract(context.Background(), buf.Bytes(), "docx")
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", text)
}

func TestExtractEML(t *testing.T) {
	raw := []byte("From: Alice <alice@example.com>\r\n" +
		"To: Bob <bob@example.com>\r\n" +
		"Subject: Policy question\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"Is knee surgery covered?\r\n")
	s := NewService()
	text, err := s.Extract(context.Background(), raw, "message/rfc822")
	require.NoError(t, err)
	assert.Contains(t, text, "Subject: Policy question")
	assert.Contains(t, text, "Is knee surgery covered?")
}

func TestExtractEMLHTMLFallback(t *testing.T) {
	raw := []byte("From: a@example.com\r\n" +
		"Subject: hi\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<html><body><p>Hello <b>world</b></p></body></html>\r\n")
	s := NewService()
	text, err := s.Extract(context.Background(), raw, "eml")
	require.NoError(t, err)
	assert.Contains(t, text, "Hello world")
	assert.NotContains(t, text, "<b>")
}

func TestNormalizeType(t *testing.T) {
	tests := map[string]string{
		"application/pdf": "pdf",
		"text/plain; charset=utf-8": "txt",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
		"message/rfc822": "eml",
		"PDF":            "pdf",
		".txt":           "txt",
		"notes.eml":      "eml",
		"image/png":      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeType(in), in)
	}
}
