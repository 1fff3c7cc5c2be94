package extract

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFBytes extracts plain text from a PDF document held in memory.
// Image-only or unparsable pages are skipped; the text of the remaining pages
// is joined with newlines. An empty result with a nil error means the document
// parsed but carried no extractable text.
func PDFBytes(b []byte) (string, error) {
	rdr, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", err
	}

	n := rdr.NumPage()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		pg := rdr.Page(i)
		if pg.V.IsNull() {
			continue
		}
		txt, err := pg.GetPlainText(nil)
		if err != nil {
			// Image-only or problematic page, skip it.
			continue
		}
		if s := strings.TrimSpace(txt); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n"), nil
}
