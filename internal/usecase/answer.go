package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/david-revell/rag-agent/internal/adapter/analyzer"
	"github.com/david-revell/rag-agent/internal/adapter/memstore"
	"github.com/david-revell/rag-agent/internal/adapter/retriever"
	"github.com/david-revell/rag-agent/internal/domain"
	"github.com/david-revell/rag-agent/internal/port"
)

// RefusalMessage is returned whenever grounding fails: empty query,
// empty corpus, embedding failure, or no relevant chunks.
const RefusalMessage = "I cannot answer that question based on the documents available to me."

// GenerationFallbackMessage is returned when retrieval succeeded but
// the generation provider failed.
const GenerationFallbackMessage = "I found relevant material but was unable to compose an answer. Please try again."

const groundingSystemPrompt = `You are a question-answering assistant restricted to the provided context.
Answer using only the supplied context, in one short factual paragraph.
Do not use any external knowledge. If the context is insufficient to
answer, either say you cannot answer from the available documents or
ask one brief clarifying question.`

// Agent answers a single question from the corpus, or refuses. Every
// failure path resolves to a fixed string; Answer never returns an
// error.
type Agent struct {
	corpus     *memstore.Corpus
	tokenizer  *analyzer.Tokenizer
	embedder   port.Embedder
	ranker     *retriever.Ranker
	llm        port.LLM
	rawContext bool
	logger     *zap.Logger
}

// NewAgent wires the query path. When rawContext is true, generation
// is bypassed and the assembled grounding context is returned
// verbatim; the refusal checks still apply.
func NewAgent(
	corpus *memstore.Corpus,
	tokenizer *analyzer.Tokenizer,
	embedder port.Embedder,
	ranker *retriever.Ranker,
	llm port.LLM,
	rawContext bool,
	logger *zap.Logger,
) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		corpus:     corpus,
		tokenizer:  tokenizer,
		embedder:   embedder,
		ranker:     ranker,
		llm:        llm,
		rawContext: rawContext,
		logger:     logger,
	}
}

// Answer runs the query pipeline: tokenize, embed, rank, select,
// generate. Each stage short-circuits to the fixed refusal message on
// failure; a generation failure maps to the fallback message instead.
func (a *Agent) Answer(ctx context.Context, question string) string {
	tokens := a.tokenizer.Tokenize(question)
	if len(tokens) == 0 {
		return RefusalMessage
	}

	// Refuse before touching the network if there is nothing to
	// retrieve from.
	if a.corpus == nil || a.corpus.Len() == 0 {
		return RefusalMessage
	}

	a.logger.Debug("query tokenized", zap.Strings("tokens", tokens))

	vectors, err := a.embedder.Embed(ctx, []string{question})
	if err != nil || len(vectors) != 1 || len(vectors[0]) == 0 {
		a.logger.Debug("query embedding failed", zap.Error(err))
		return RefusalMessage
	}

	scored := a.ranker.Rank(vectors[0], a.corpus.Chunks())
	selected := a.ranker.Select(scored)
	if len(selected) == 0 {
		return RefusalMessage
	}

	for _, sc := range selected {
		a.logger.Debug("chunk selected",
			zap.String("chunk", sc.Chunk.ID),
			zap.String("document", sc.Chunk.DocumentID),
			zap.Int("page", sc.Chunk.PageNumber),
			zap.Float64("score", sc.Score))
	}

	groundingContext := buildGroundingContext(selected)
	if a.rawContext {
		return groundingContext
	}

	userPrompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", groundingContext, question)
	answer, err := a.llm.GenerateWithSystem(ctx, groundingSystemPrompt, userPrompt)
	if err != nil || strings.TrimSpace(answer) == "" {
		a.logger.Warn("generation failed", zap.Error(err))
		return GenerationFallbackMessage
	}

	return answer
}

// buildGroundingContext concatenates the selected chunks in descending
// score order, each preceded by its document and page provenance.
func buildGroundingContext(selected []domain.ScoredChunk) string {
	var b strings.Builder
	for i, sc := range selected {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%s, page %d]\n%s", sc.Chunk.DocumentID, sc.Chunk.PageNumber, sc.Chunk.Text)
	}
	return b.String()
}
