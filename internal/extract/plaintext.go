package extract

import (
	"strings"
	"unicode/utf8"

	"docqa/internal/domain"
)

// extractPlainText decodes the bytes as UTF-8 text, normalising line endings.
func extractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", domain.ErrParseFailure
	}
	text := string(data)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return text, nil
}
