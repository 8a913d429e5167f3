package file

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	return path
}

func TestExtractText_PlainFiles(t *testing.T) {
	path := writeTemp(t, "notes", "line one\nline two")

	got, err := ExtractText(path, "notes.txt")
	if err != nil {
		t.Fatalf("txt: %v", err)
	}
	if got != "line one\nline two" {
		t.Fatalf("unexpected text: %q", got)
	}

	got, err = ExtractText(path, "README.MD")
	if err != nil || got == "" {
		t.Fatalf("md extension should be case-insensitive, got %q err=%v", got, err)
	}
}

func TestExtractText_UnsupportedType(t *testing.T) {
	path := writeTemp(t, "photo", "\x89PNG not really")

	got, err := ExtractText(path, "photo.png")
	if err != nil {
		t.Fatalf("unsupported types must not error: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}

func TestExtractText_Truncation(t *testing.T) {
	big := strings.Repeat("x", maxExtractedLen+500)
	path := writeTemp(t, "big", big)

	got, err := ExtractText(path, "big.txt")
	if err != nil {
		t.Fatalf("txt: %v", err)
	}
	if len(got) != maxExtractedLen {
		t.Fatalf("expected truncation to %d, got %d", maxExtractedLen, len(got))
	}
}

func TestExtractText_BrokenPDF(t *testing.T) {
	path := writeTemp(t, "fake", "not a pdf at all")

	if _, err := ExtractText(path, "fake.pdf"); err == nil {
		t.Fatalf("expected an error for a corrupt pdf")
	}
}
