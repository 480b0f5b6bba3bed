package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/david-revell/rag-agent/internal/adapter/analyzer"
	"github.com/david-revell/rag-agent/internal/adapter/embedding"
	"github.com/david-revell/rag-agent/internal/adapter/memstore"
	"github.com/david-revell/rag-agent/internal/adapter/retriever"
	"github.com/david-revell/rag-agent/internal/domain"
	"github.com/david-revell/rag-agent/internal/port"
)

// trackingEmbedder wraps an embedder and counts calls, so tests can
// assert the refusal paths never reach the network boundary.
type trackingEmbedder struct {
	inner port.Embedder
	calls int
	err   error
}

func (e *trackingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.inner.Embed(ctx, texts)
}

func (e *trackingEmbedder) Dimension() int    { return e.inner.Dimension() }
func (e *trackingEmbedder) ModelName() string { return e.inner.ModelName() }

// fixedEmbedder maps exact texts to preset vectors.
type fixedEmbedder struct {
	vectors map[string][]float32
}

func (e *fixedEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vectors[t]
	}
	return out, nil
}

func (e *fixedEmbedder) Dimension() int    { return 2 }
func (e *fixedEmbedder) ModelName() string { return "fixed" }

type fakeLLM struct {
	reply string
	err   error
	calls int
}

func (l *fakeLLM) GenerateWithSystem(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	l.calls++
	if l.err != nil {
		return "", l.err
	}
	return l.reply, nil
}

func (l *fakeLLM) ModelName() string { return "fake" }

func buildCorpus(t *testing.T, texts ...string) *memstore.Corpus {
	t.Helper()
	emb := embedding.NewMockEmbedder(64)
	vecs, err := emb.Embed(context.Background(), texts)
	if err != nil {
		t.Fatal(err)
	}
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ID:         chunkID("doc.txt", 1, i),
			DocumentID: "doc.txt",
			PageNumber: 1,
			Text:       text,
			Embedding:  vecs[i],
		}
	}
	corpus, err := memstore.NewCorpus(chunks)
	if err != nil {
		t.Fatal(err)
	}
	return corpus
}

func TestAnswerRefusesEmptyAndStopwordQueries(t *testing.T) {
	corpus := buildCorpus(t, "The king moves one square in any direction.")
	emb := &trackingEmbedder{inner: embedding.NewMockEmbedder(64)}
	llm := &fakeLLM{reply: "should not be called"}
	agent := NewAgent(corpus, analyzer.NewTokenizer(), emb, retriever.NewRanker(3), llm, false, nil)

	queries := []string{"", "   \n\t ", "what is the"}
	for _, q := range queries {
		if got := agent.Answer(context.Background(), q); got != RefusalMessage {
			t.Errorf("Answer(%q) = %q, want refusal", q, got)
		}
	}
	if emb.calls != 0 {
		t.Errorf("embedder called %d times on refused queries", emb.calls)
	}
	if llm.calls != 0 {
		t.Errorf("llm called %d times on refused queries", llm.calls)
	}
}

func TestAnswerRefusesNilCorpus(t *testing.T) {
	emb := &trackingEmbedder{inner: embedding.NewMockEmbedder(64)}
	agent := NewAgent(nil, analyzer.NewTokenizer(), emb, retriever.NewRanker(3), &fakeLLM{}, false, nil)

	if got := agent.Answer(context.Background(), "What is castling?"); got != RefusalMessage {
		t.Errorf("expected refusal on nil corpus, got %q", got)
	}
	if emb.calls != 0 {
		t.Error("embedder must not be called when the corpus is empty")
	}
}

func TestAnswerRefusesOnEmbeddingFailure(t *testing.T) {
	corpus := buildCorpus(t, "The king moves one square.")
	emb := &trackingEmbedder{inner: embedding.NewMockEmbedder(64), err: errors.New("provider down")}
	llm := &fakeLLM{reply: "unused"}
	agent := NewAgent(corpus, analyzer.NewTokenizer(), emb, retriever.NewRanker(3), llm, false, nil)

	if got := agent.Answer(context.Background(), "How does the king move?"); got != RefusalMessage {
		t.Errorf("expected refusal on embedding failure, got %q", got)
	}
	if llm.calls != 0 {
		t.Error("generation must not run after an embedding failure")
	}
}

func TestAnswerRefusesWhenBestScoreIsZero(t *testing.T) {
	// The query vector is orthogonal to every chunk embedding, so the
	// best cosine score is exactly 0.0 and must be filtered out.
	chunks := []domain.Chunk{
		{ID: "c1", DocumentID: "doc.txt", PageNumber: 1, Text: "alpha", Embedding: []float32{1, 0}},
		{ID: "c2", DocumentID: "doc.txt", PageNumber: 1, Text: "beta", Embedding: []float32{2, 0}},
	}
	corpus, err := memstore.NewCorpus(chunks)
	if err != nil {
		t.Fatal(err)
	}

	emb := &fixedEmbedder{vectors: map[string][]float32{
		"unrelated question": {0, 1},
	}}
	llm := &fakeLLM{reply: "unused"}
	agent := NewAgent(corpus, analyzer.NewTokenizer(), emb, retriever.NewRanker(3), llm, false, nil)

	if got := agent.Answer(context.Background(), "unrelated question"); got != RefusalMessage {
		t.Errorf("zero-score match must refuse, got %q", got)
	}
	if llm.calls != 0 {
		t.Error("generation must not run without relevant chunks")
	}
}

func TestAnswerRawContextMode(t *testing.T) {
	corpus := buildCorpus(t,
		"The capital of France is Paris. Paris has a population of over two million.",
		"Pawns capture diagonally.",
	)
	agent := NewAgent(corpus, analyzer.NewTokenizer(), embedding.NewMockEmbedder(64),
		retriever.NewRanker(3), &fakeLLM{reply: "unused"}, true, nil)

	got := agent.Answer(context.Background(), "What is the capital of France?")
	if !strings.Contains(got, "Paris") {
		t.Errorf("raw context should contain the matching chunk, got %q", got)
	}
	if !strings.Contains(got, "page 1") {
		t.Errorf("raw context should cite the page, got %q", got)
	}
	if !strings.Contains(got, "doc.txt") {
		t.Errorf("raw context should cite the document, got %q", got)
	}
}

func TestAnswerGenerationSuccess(t *testing.T) {
	corpus := buildCorpus(t, "The capital of France is Paris.")
	llm := &fakeLLM{reply: "Paris is the capital of France (doc.txt, page 1)."}
	agent := NewAgent(corpus, analyzer.NewTokenizer(), embedding.NewMockEmbedder(64),
		retriever.NewRanker(3), llm, false, nil)

	got := agent.Answer(context.Background(), "What is the capital of France?")
	if got != llm.reply {
		t.Errorf("expected generated answer, got %q", got)
	}
	if llm.calls != 1 {
		t.Errorf("expected exactly one generation call, got %d", llm.calls)
	}
}

func TestAnswerGenerationFallback(t *testing.T) {
	corpus := buildCorpus(t, "The capital of France is Paris.")
	llm := &fakeLLM{err: errors.New("provider down")}
	agent := NewAgent(corpus, analyzer.NewTokenizer(), embedding.NewMockEmbedder(64),
		retriever.NewRanker(3), llm, false, nil)

	got := agent.Answer(context.Background(), "What is the capital of France?")
	if got != GenerationFallbackMessage {
		t.Errorf("expected generation fallback, got %q", got)
	}
}

func TestAnswerGenerationBlankReplyFallsBack(t *testing.T) {
	corpus := buildCorpus(t, "The capital of France is Paris.")
	llm := &fakeLLM{reply: "   "}
	agent := NewAgent(corpus, analyzer.NewTokenizer(), embedding.NewMockEmbedder(64),
		retriever.NewRanker(3), llm, false, nil)

	got := agent.Answer(context.Background(), "What is the capital of France?")
	if got != GenerationFallbackMessage {
		t.Errorf("expected fallback for blank generation, got %q", got)
	}
}
