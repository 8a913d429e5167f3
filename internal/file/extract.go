package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extraction keeps bounded output; huge documents are truncated, the point is
// searchable text, not a faithful copy
const maxExtractedLen = 100_000

// ExtractText pulls plain text out of an uploaded file. PDFs go through the
// pdf reader; txt and markdown are read as-is. Unsupported types return an
// empty string without error, upload still succeeds.
func ExtractText(path, originalName string) (string, error) {
	switch strings.ToLower(filepath.Ext(originalName)) {
	case ".pdf":
		return extractPDF(path)
	case ".txt", ".md":
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return truncate(string(b)), nil
	default:
		return "", nil
	}
}

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue // skip unreadable pages, keep what we can
		}
		b.WriteString(text)
		b.WriteByte('\n')
		if b.Len() > maxExtractedLen {
			break
		}
	}
	return truncate(b.String()), nil
}

func truncate(s string) string {
	if len(s) > maxExtractedLen {
		return s[:maxExtractedLen]
	}
	return s
}
