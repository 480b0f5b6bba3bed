package memstore

import (
	"fmt"

	"github.com/david-revell/rag-agent/internal/domain"
)

// Corpus is the complete in-memory collection of embedded chunks,
// built once at startup and read-only afterwards. Because no writer
// exists after construction it is safe to share across goroutines
// without locking.
type Corpus struct {
	chunks []domain.Chunk
}

// NewCorpus validates and freezes the ingested chunks. Construction
// fails on an empty chunk list or on any chunk with empty text or a
// missing embedding; serving queries on such a corpus would be
// indistinguishable from "nothing is ever relevant".
func NewCorpus(chunks []domain.Chunk) (*Corpus, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("corpus has no chunks")
	}
	for i, chunk := range chunks {
		if chunk.Text == "" {
			return nil, fmt.Errorf("chunk %d (%s) has empty text", i, chunk.ID)
		}
		if len(chunk.Embedding) == 0 {
			return nil, fmt.Errorf("chunk %d (%s) has no embedding", i, chunk.ID)
		}
	}
	return &Corpus{chunks: chunks}, nil
}

// Chunks returns the indexed chunks in ingestion order. The returned
// slice must not be modified.
func (c *Corpus) Chunks() []domain.Chunk {
	return c.chunks
}

// Len returns the number of indexed chunks.
func (c *Corpus) Len() int {
	return len(c.chunks)
}
