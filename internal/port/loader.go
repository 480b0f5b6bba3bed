package port

import "github.com/david-revell/rag-agent/internal/domain"

// DocumentLoader extracts per-page raw text from every document found
// in a source directory, in lexicographic file order.
type DocumentLoader interface {
	Load(dir string) ([]domain.PageText, error)
}
