package cli

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var runScenarioName string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario from the scenarios CSV and log the conversation",
	Long: `Load the scenarios CSV (columns: scenario, question), answer the named
scenario's question in a single turn, and save a conversation log.

Examples:
  rag-agent run                        # Run the first scenario
  rag-agent run --scenario en_passant  # Run a named scenario`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runScenarioName, "scenario", "", "scenario name (default is the first row)")
}

// Scenario is one row of the scenarios CSV: a name and the question
// the synthetic user asks.
type Scenario struct {
	Name     string
	Question string
}

func runRun(cmd *cobra.Command, args []string) error {
	scenarios, err := loadScenarios(cfg.Runner.ScenariosFile)
	if err != nil {
		return err
	}
	if len(scenarios) == 0 {
		return fmt.Errorf("no scenarios found in %s; add rows with scenario and question", cfg.Runner.ScenariosFile)
	}

	scenario := chooseScenario(scenarios, runScenarioName)

	agent, cleanup, err := buildAgent(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	now := time.Now()
	answer := agent.Answer(cmd.Context(), scenario.Question)

	timestamp := now.Format("2006-01-02 15:04:05")
	turns := []conversationTurn{
		{Role: "user", Content: scenario.Question, Timestamp: timestamp},
		{Role: "assistant", Content: answer, Timestamp: timestamp},
	}
	meta := runMetadata{
		SessionID:  "rag_run_" + now.Format("20060102T150405"),
		Mode:       "synthetic",
		Scenario:   scenario.Name,
		MaxTurns:   1,
		StopReason: "single_turn",
	}

	path, err := writeConversationLog(cfg.Runner.LogDir, meta, turns, now)
	if err != nil {
		return fmt.Errorf("failed to save conversation log: %w", err)
	}

	fmt.Println(answer)
	fmt.Fprintf(os.Stderr, "Conversation log saved to %s\n", path)
	return nil
}

// loadScenarios reads the scenarios CSV. The question column may also
// be named initial_user_message; rows missing either field are
// skipped.
func loadScenarios(path string) ([]Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenarios file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenarios file: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	nameCol, questionCol := -1, -1
	for i, col := range records[0] {
		switch strings.TrimSpace(strings.ToLower(col)) {
		case "scenario":
			nameCol = i
		case "question":
			questionCol = i
		case "initial_user_message":
			if questionCol == -1 {
				questionCol = i
			}
		}
	}
	if nameCol == -1 || questionCol == -1 {
		return nil, fmt.Errorf("scenarios file must have scenario and question columns")
	}

	var scenarios []Scenario
	for _, record := range records[1:] {
		if nameCol >= len(record) || questionCol >= len(record) {
			continue
		}
		name := strings.TrimSpace(record[nameCol])
		question := strings.TrimSpace(record[questionCol])
		if name == "" || question == "" {
			continue
		}
		scenarios = append(scenarios, Scenario{Name: name, Question: question})
	}

	return scenarios, nil
}

// chooseScenario returns the named scenario, or the first one when the
// name is empty or unknown.
func chooseScenario(scenarios []Scenario, name string) Scenario {
	if name != "" {
		for _, s := range scenarios {
			if s.Name == name {
				return s
			}
		}
	}
	return scenarios[0]
}

type conversationTurn struct {
	Role      string
	Content   string
	Timestamp string
}

type runMetadata struct {
	SessionID  string
	Mode       string
	Scenario   string
	MaxTurns   int
	StopReason string
}

// writeConversationLog saves the run in the shared log format: a run
// metadata header followed by the conversation turns.
func writeConversationLog(dir string, meta runMetadata, turns []conversationTurn, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Run metadata:\n")
	fmt.Fprintf(&b, "- session_id: %s\n", meta.SessionID)
	fmt.Fprintf(&b, "- mode: %s\n", meta.Mode)
	fmt.Fprintf(&b, "- scenario: %s\n", meta.Scenario)
	fmt.Fprintf(&b, "- max_turns: %d\n", meta.MaxTurns)
	fmt.Fprintf(&b, "- stop_reason: %s\n", meta.StopReason)
	b.WriteString("\nConversation:\n\n")
	for _, turn := range turns {
		fmt.Fprintf(&b, " - %s [%s]:\n %s\n", turn.Role, turn.Timestamp, turn.Content)
	}

	filename := fmt.Sprintf("run_%s_%06d.txt", now.Format("20060102_150405"), now.Nanosecond()/1000)
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", err
	}
	return path, nil
}
