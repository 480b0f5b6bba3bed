package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question from the knowledge directory",
	Long: `Ingest the knowledge directory, then answer a single question grounded
in the most relevant passages.

Examples:
  rag-agent ask "How does the knight move?"
  rag-agent ask What happens on a stalemate`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))

	agent, cleanup, err := buildAgent(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Println(agent.Answer(cmd.Context(), question))
	return nil
}
