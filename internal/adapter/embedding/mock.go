package embedding

import (
	"context"
	"unicode"
)

// MockEmbedder is a deterministic offline embedder. It hashes words
// into a fixed-size bag-of-words vector, so texts sharing words score
// higher under cosine similarity. Useful for tests and dry runs.
type MockEmbedder struct {
	dimension int
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	if dimension <= 0 {
		dimension = 64
	}
	return &MockEmbedder{dimension: dimension}
}

func (e *MockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, e.dimension)
		var h uint32
		flush := func() {
			if h != 0 {
				vec[h%uint32(e.dimension)]++
				h = 0
			}
		}
		for _, r := range text {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				flush()
				continue
			}
			// FNV-1a over the lowercased word.
			r = unicode.ToLower(r)
			if h == 0 {
				h = 2166136261
			}
			h = (h ^ uint32(r)) * 16777619
		}
		flush()
		vectors[i] = vec
	}
	return vectors, nil
}

func (e *MockEmbedder) Dimension() int {
	return e.dimension
}

func (e *MockEmbedder) ModelName() string {
	return "mock"
}
