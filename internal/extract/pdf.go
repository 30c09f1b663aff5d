package extract

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"

	"docqa/internal/domain"
)

// extractPDF pulls plain text from every page. Pages that fail text
// extraction are skipped; a document with no readable pages is a parse
// failure.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if recover() != nil {
			text, err = "", domain.ErrParseFailure
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.ErrParseFailure
	}
	var b strings.Builder
	pages := reader.NumPage()
	extracted := 0
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
		extracted++
	}
	if extracted == 0 {
		return "", domain.ErrParseFailure
	}
	return b.String(), nil
}
