package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the RAG agent.
type Config struct {
	Knowledge  KnowledgeConfig  `yaml:"knowledge"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Runner     RunnerConfig     `yaml:"runner"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// KnowledgeConfig locates the document corpus.
type KnowledgeConfig struct {
	Dir      string   `yaml:"dir"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// ChunkingConfig bounds passage size. Larger chunks keep supporting
// context together; smaller chunks sharpen relevance scoring.
type ChunkingConfig struct {
	MaxChars int `yaml:"max_chars"`
}

// RetrievalConfig controls grounding-context selection.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "openai" or "mock"
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BatchSize int    `yaml:"batch_size"`
	CachePath string `yaml:"cache_path"` // empty disables the embedding cache
}

// GenerationConfig selects the answer generation model. RawContext
// bypasses generation and returns the concatenated grounding context,
// useful for deterministic testing of the retrieval stage.
type GenerationConfig struct {
	Model      string `yaml:"model"`
	APIKeyEnv  string `yaml:"api_key_env"`
	RawContext bool   `yaml:"raw_context"`
}

// RunnerConfig configures the scenario runner.
type RunnerConfig struct {
	ScenariosFile string `yaml:"scenarios_file"`
	LogDir        string `yaml:"log_dir"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Knowledge: KnowledgeConfig{
			Dir:      "knowledge",
			Includes: []string{"*.pdf", "*.txt"},
		},
		Chunking: ChunkingConfig{
			MaxChars: 900,
		},
		Retrieval: RetrievalConfig{
			TopK: 3,
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			BatchSize: 100,
		},
		Generation: GenerationConfig{
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Runner: RunnerConfig{
			ScenariosFile: "rag_scenarios.csv",
			LogDir:        "conversation_logs",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, applied over defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// LoadFromDir loads rag-agent.yaml from the directory if present,
// otherwise returns defaults.
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "rag-agent.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	return DefaultConfig(), nil
}
