// Package extract turns raw file bytes into plain text for chunking.
// Supported formats: pdf, txt, docx, eml.
package extract

import (
	"context"
	"strings"

	"docqa/internal/domain"
)

// Service dispatches extraction by declared MIME type or bare extension.
type Service struct{}

// NewService creates the default text extraction service.
func NewService() *Service { return &Service{} }

// Extract converts file bytes into plain text. Unknown types fail with
// ErrUnsupportedFormat, corrupt content with ErrParseFailure.
func (s *Service) Extract(ctx context.Context, data []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch normalizeType(mimeType) {
	case "txt":
		return extractPlainText(data)
	case "pdf":
		return extractPDF(data)
	case "docx":
		return extractDOCX(data)
	case "eml":
		return extractEML(data)
	default:
		return "", domain.ErrUnsupportedFormat
	}
}

// normalizeType accepts full MIME types, bare extensions and filenames.
func normalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	switch t {
	case "application/pdf":
		return "pdf"
	case "text/plain":
		return "txt"
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return "docx"
	case "message/rfc822":
		return "eml"
	}
	if i := strings.LastIndexByte(t, '.'); i >= 0 {
		t = t[i+1:]
	}
	switch t {
	case "pdf", "txt", "docx", "eml":
		return t
	}
	return ""
}
