package port

import "context"

// Embedder generates vector embeddings for text.
//
// Embed returns one vector per input text, position-aligned with the
// input. Callers must treat an error or a length mismatch as total
// failure for the batch; partial results are never returned.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
