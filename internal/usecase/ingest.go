package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"

	"github.com/david-revell/rag-agent/internal/adapter/analyzer"
	"github.com/david-revell/rag-agent/internal/adapter/chunker"
	"github.com/david-revell/rag-agent/internal/adapter/memstore"
	"github.com/david-revell/rag-agent/internal/domain"
	"github.com/david-revell/rag-agent/internal/port"
)

// IngestionError marks a fatal failure to build the corpus index.
// Startup must abort on it: serving queries on an empty or unembedded
// corpus is indistinguishable from "nothing is ever relevant".
type IngestionError struct {
	Reason string
	Err    error
}

func (e *IngestionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ingestion failed: %s: %v", e.Reason, e.Err)
	}
	return "ingestion failed: " + e.Reason
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// Ingester builds the corpus index: load pages, normalize, chunk,
// embed, freeze. It runs exactly once at startup.
type Ingester struct {
	loader    port.DocumentLoader
	chunker   *chunker.SentenceChunker
	embedder  port.Embedder
	batchSize int
	progress  func(done, total int)
	logger    *zap.Logger
}

func NewIngester(
	loader port.DocumentLoader,
	chunkr *chunker.SentenceChunker,
	embedder port.Embedder,
	batchSize int,
	logger *zap.Logger,
) *Ingester {
	if batchSize <= 0 {
		batchSize = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{
		loader:    loader,
		chunker:   chunkr,
		embedder:  embedder,
		batchSize: batchSize,
		logger:    logger,
	}
}

// OnProgress registers a callback invoked after each embedded batch
// with the number of chunks embedded so far and the total.
func (g *Ingester) OnProgress(fn func(done, total int)) {
	g.progress = fn
}

// Ingest builds the corpus from every document in dir. All failures
// wrap *IngestionError.
func (g *Ingester) Ingest(ctx context.Context, dir string) (*memstore.Corpus, error) {
	pages, err := g.loader.Load(dir)
	if err != nil {
		return nil, &IngestionError{Reason: "loading documents", Err: err}
	}

	var chunks []domain.Chunk
	var texts []string
	for _, page := range pages {
		normalized := analyzer.Normalize(page.RawText)
		if normalized == "" {
			continue
		}
		g.logger.Debug("page normalized",
			zap.String("document", page.DocumentID),
			zap.Int("page", page.PageNumber),
			zap.Int("tokens", len(page.Tokens)))

		for i, text := range g.chunker.Chunk(normalized) {
			chunks = append(chunks, domain.Chunk{
				ID:         chunkID(page.DocumentID, page.PageNumber, i),
				DocumentID: page.DocumentID,
				PageNumber: page.PageNumber,
				Text:       text,
			})
			texts = append(texts, text)
		}
	}

	if len(chunks) == 0 {
		return nil, &IngestionError{Reason: "documents produced no chunks"}
	}

	vectors, err := g.embedAll(ctx, texts)
	if err != nil {
		return nil, &IngestionError{Reason: "embedding corpus", Err: err}
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	corpus, err := memstore.NewCorpus(chunks)
	if err != nil {
		return nil, &IngestionError{Reason: "building corpus index", Err: err}
	}

	g.logger.Info("corpus built",
		zap.Int("pages", len(pages)),
		zap.Int("chunks", corpus.Len()),
		zap.String("model", g.embedder.ModelName()))

	return corpus, nil
}

// embedAll embeds texts in batches, reporting progress after each one.
func (g *Ingester) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	total := len(texts)
	vectors := make([][]float32, 0, total)

	for start := 0; start < total; start += g.batchSize {
		end := start + g.batchSize
		if end > total {
			end = total
		}

		batch, err := g.embedder.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", end-start, len(batch))
		}
		vectors = append(vectors, batch...)

		if g.progress != nil {
			g.progress(end, total)
		}
	}

	return vectors, nil
}

func chunkID(docID string, page, index int) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%d", docID, page, index)))
	return hex.EncodeToString(hash[:8])
}
