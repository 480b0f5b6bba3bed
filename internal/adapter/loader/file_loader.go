package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ledongthuc/pdf"

	"github.com/david-revell/rag-agent/internal/adapter/analyzer"
	"github.com/david-revell/rag-agent/internal/domain"
)

// FileLoader extracts per-page text from documents in a directory.
// PDF files yield one PageText per page; plain-text files yield a
// single page. Files are processed in lexicographic order.
//
// The contract is fail-fast: a missing directory, zero matching files,
// any unparseable document, or a corpus with no extractable text all
// return an error, so startup can abort instead of serving an empty
// index.
type FileLoader struct {
	includes  []string
	excludes  []string
	tokenizer *analyzer.Tokenizer
}

// NewFileLoader creates a loader matching files against doublestar
// patterns relative to the source directory.
func NewFileLoader(includes, excludes []string, tokenizer *analyzer.Tokenizer) *FileLoader {
	if len(includes) == 0 {
		includes = []string{"*.pdf", "*.txt"}
	}
	if tokenizer == nil {
		tokenizer = analyzer.NewTokenizer()
	}
	return &FileLoader{
		includes:  includes,
		excludes:  excludes,
		tokenizer: tokenizer,
	}
}

// Load reads every matching document and returns its non-empty pages.
func (l *FileLoader) Load(dir string) ([]domain.PageText, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read document directory %s: %w", dir, err)
	}

	// os.ReadDir returns entries sorted by filename.
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if l.shouldInclude(name) && !l.shouldExclude(name) {
			paths = append(paths, filepath.Join(dir, name))
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no document files found in %s", dir)
	}

	var pages []domain.PageText
	for _, path := range paths {
		docPages, err := l.loadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		for i := range docPages {
			docPages[i].Tokens = l.tokenizer.Tokenize(docPages[i].RawText)
		}
		pages = append(pages, docPages...)
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("documents in %s contained no extractable text", dir)
	}

	return pages, nil
}

func (l *FileLoader) loadFile(path string) ([]domain.PageText, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return loadPDF(path)
	}
	return loadText(path)
}

// loadPDF extracts one PageText per non-empty PDF page.
func loadPDF(path string) ([]domain.PageText, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	docID := filepath.Base(path)
	var pages []domain.PageText

	total := reader.NumPage()
	for n := 1; n <= total; n++ {
		page := reader.Page(n)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", n, err)
		}
		if analyzer.Normalize(text) == "" {
			continue
		}
		pages = append(pages, domain.PageText{
			DocumentID: docID,
			PageNumber: n,
			RawText:    text,
		})
	}

	return pages, nil
}

// loadText loads a plain-text file as a single-page document.
func loadText(path string) ([]domain.PageText, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	text := string(data)
	if analyzer.Normalize(text) == "" {
		return nil, nil
	}

	return []domain.PageText{{
		DocumentID: filepath.Base(path),
		PageNumber: 1,
		RawText:    text,
	}}, nil
}

func (l *FileLoader) shouldInclude(name string) bool {
	for _, pattern := range l.includes {
		matched, err := doublestar.Match(pattern, name)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (l *FileLoader) shouldExclude(name string) bool {
	for _, pattern := range l.excludes {
		matched, err := doublestar.Match(pattern, name)
		if err == nil && matched {
			return true
		}
	}
	return false
}
