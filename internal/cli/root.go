package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/david-revell/rag-agent/config"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rag-agent",
	Short: "Single-turn question answering grounded in a local document corpus",
	Long: `rag-agent ingests the documents in a knowledge directory once, builds an
in-memory index of passage embeddings, and answers each question from the
most relevant passages or refuses when nothing relevant is found.

Example usage:
  rag-agent ask "How does castling work?"   # Answer one question
  rag-agent run --scenario illegal_move     # Run a scenario from the CSV`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(".")
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err = newLogger(cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}

		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./rag-agent.yaml)")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	// Keep stdout free for answers; diagnostics go to stderr.
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}
