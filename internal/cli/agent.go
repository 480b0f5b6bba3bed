package cli

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/david-revell/rag-agent/config"
	"github.com/david-revell/rag-agent/internal/adapter/analyzer"
	"github.com/david-revell/rag-agent/internal/adapter/chunker"
	"github.com/david-revell/rag-agent/internal/adapter/embedding"
	"github.com/david-revell/rag-agent/internal/adapter/generation"
	"github.com/david-revell/rag-agent/internal/adapter/loader"
	"github.com/david-revell/rag-agent/internal/adapter/retriever"
	"github.com/david-revell/rag-agent/internal/port"
	"github.com/david-revell/rag-agent/internal/usecase"
)

// buildAgent runs the ingestion pipeline against the configured
// knowledge directory and wires the query path. The returned cleanup
// func releases the embedding cache, if one is configured.
func buildAgent(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*usecase.Agent, func(), error) {
	embedder, cleanup, err := buildEmbedder(cfg)
	if err != nil {
		return nil, nil, err
	}

	tokenizer := analyzer.NewTokenizer()
	ingester := usecase.NewIngester(
		loader.NewFileLoader(cfg.Knowledge.Includes, cfg.Knowledge.Excludes, tokenizer),
		chunker.NewSentenceChunker(cfg.Chunking.MaxChars),
		embedder,
		cfg.Embedding.BatchSize,
		logger,
	)

	var bar *progressbar.ProgressBar
	ingester.OnProgress(func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("Embedding corpus"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		_ = bar.Set(done)
	})

	corpus, err := ingester.Ingest(ctx, cfg.Knowledge.Dir)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	var llm port.LLM
	if !cfg.Generation.RawContext {
		llm, err = generation.NewOpenAILLM(cfg.Generation.APIKeyEnv, cfg.Generation.Model)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	agent := usecase.NewAgent(
		corpus,
		tokenizer,
		embedder,
		retriever.NewRanker(cfg.Retrieval.TopK),
		llm,
		cfg.Generation.RawContext,
		logger,
	)

	return agent, cleanup, nil
}

func buildEmbedder(cfg *config.Config) (port.Embedder, func(), error) {
	var embedder port.Embedder
	var err error

	switch cfg.Embedding.Provider {
	case "mock":
		embedder = embedding.NewMockEmbedder(64)
	default:
		embedder, err = embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model)
		if err != nil {
			return nil, nil, err
		}
	}

	if cfg.Embedding.CachePath == "" {
		return embedder, func() {}, nil
	}

	cached, err := embedding.NewCachedEmbedder(embedder, cfg.Embedding.CachePath)
	if err != nil {
		return nil, nil, err
	}
	return cached, func() { _ = cached.Close() }, nil
}
