package convert

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/entityxtract/entityxtract/internal/common"
)

// PDFText extracts the text layer of a PDF, one block per page, separated by
// explicit page markers so the model can reason about page boundaries.
// PDFs without a text layer (scans) yield ErrUnsupportedFormat; OCR is out of
// scope and callers should fall back to image input modes.
func PDFText(data []byte) (string, int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, common.WrapError(common.ErrUnsupportedFormat, fmt.Sprintf("open pdf: %v", err))
	}

	var b strings.Builder
	numPages := reader.NumPage()
	extracted := 0

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest.
			continue
		}
		fmt.Fprintf(&b, "========== page %d start ==========\n\n", i)
		b.WriteString(text)
		fmt.Fprintf(&b, "\n\n========== page %d end ==========\n\n", i)
		extracted++
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", numPages, common.WrapError(common.ErrUnsupportedFormat, "pdf has no extractable text layer")
	}
	return out, extracted, nil
}
