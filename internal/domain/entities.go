package domain

// PageText is the raw text of a single document page, produced once
// during ingestion and consumed by the chunker.
type PageText struct {
	DocumentID string
	PageNumber int
	RawText    string
	Tokens     []string
}

// Chunk is a bounded passage of normalized document text, the atomic
// unit of retrieval. The embedding is attached during ingestion and
// never mutated afterwards.
type Chunk struct {
	ID         string
	DocumentID string
	PageNumber int
	Text       string
	Embedding  []float32
}

// ScoredChunk pairs a chunk with its similarity score for one query.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}
