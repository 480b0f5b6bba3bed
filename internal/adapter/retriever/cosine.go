package retriever

import (
	"math"
	"sort"

	"github.com/david-revell/rag-agent/internal/domain"
)

// DefaultTopK is the reference number of chunks selected as grounding
// context for one query.
const DefaultTopK = 3

// Cosine computes the cosine similarity of two vectors: dot product
// divided by the product of their Euclidean norms, in [-1, 1]. It is
// 0.0 when either vector is empty, the lengths differ, or either norm
// is zero; these are guards, not error conditions.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Ranker scores chunks against a query vector and selects the
// grounding set.
type Ranker struct {
	topK int
}

func NewRanker(topK int) *Ranker {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Ranker{topK: topK}
}

// Rank scores every chunk and returns all of them in descending score
// order. The sort is stable, so equal scores keep ingestion order
// within a run.
func (r *Ranker) Rank(query []float32, chunks []domain.Chunk) []domain.ScoredChunk {
	scored := make([]domain.ScoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		scored = append(scored, domain.ScoredChunk{
			Chunk: chunk,
			Score: Cosine(query, chunk.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

// Select keeps at most topK entries and drops everything with a score
// of zero or below; a non-positive score is never relevant, regardless
// of rank.
func (r *Ranker) Select(scored []domain.ScoredChunk) []domain.ScoredChunk {
	selected := make([]domain.ScoredChunk, 0, r.topK)
	for _, sc := range scored {
		if len(selected) == r.topK {
			break
		}
		if sc.Score <= 0 {
			continue
		}
		selected = append(selected, sc)
	}
	return selected
}
