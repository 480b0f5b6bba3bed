package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadTextFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rules.txt", "The king moves one square in any direction.")
	writeFile(t, dir, "history.txt", "Chess originated in India.")

	l := NewFileLoader(nil, nil, nil)
	pages, err := l.Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}

	// Lexicographic file order.
	if pages[0].DocumentID != "history.txt" || pages[1].DocumentID != "rules.txt" {
		t.Errorf("unexpected document order: %s, %s", pages[0].DocumentID, pages[1].DocumentID)
	}
	for _, p := range pages {
		if p.PageNumber != 1 {
			t.Errorf("expected page 1 for text files, got %d", p.PageNumber)
		}
		if p.RawText == "" {
			t.Errorf("page for %s has no text", p.DocumentID)
		}
		if len(p.Tokens) == 0 {
			t.Errorf("page for %s has no tokens", p.DocumentID)
		}
	}
}

func TestLoadMissingDirectory(t *testing.T) {
	l := NewFileLoader(nil, nil, nil)

	if _, err := l.Load(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestLoadNoMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.csv", "a,b,c")

	l := NewFileLoader(nil, nil, nil)
	_, err := l.Load(dir)
	if err == nil {
		t.Fatal("expected error when no document files match")
	}
	if !strings.Contains(err.Error(), "no document files") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadAllPagesEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "blank.txt", "   \n\t  ")

	l := NewFileLoader(nil, nil, nil)
	if _, err := l.Load(dir); err == nil {
		t.Fatal("expected error when documents contain no extractable text")
	}
}

func TestLoadUnparseablePDFAborts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.txt", "Some valid content.")
	writeFile(t, dir, "broken.pdf", "this is not a pdf")

	l := NewFileLoader(nil, nil, nil)
	if _, err := l.Load(dir); err == nil {
		t.Fatal("expected error for unparseable document")
	}
}

func TestLoadExcludePattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.txt", "Keep this document.")
	writeFile(t, dir, "skip.txt", "Skip this one.")

	l := NewFileLoader([]string{"*.txt"}, []string{"skip.*"}, nil)
	pages, err := l.Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	if len(pages) != 1 || pages[0].DocumentID != "keep.txt" {
		t.Errorf("exclude pattern not applied: %+v", pages)
	}
}
