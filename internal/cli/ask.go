package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"kbrag/internal/adapter/llm"
)

var (
	askQuery       string
	askShowContext bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer a question grounded in the knowledge base",
	Long: `Retrieve context for the question and ask the configured LLM.

The API key is read from the environment variable named by llm.api_key_env
(DEEPSEEK_API_KEY by default), which may be set in ./.env.

Examples:
  kbrag ask -q "Who founded OwlVest?"
  kbrag ask -q "What are the fees?" --show-context`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuery, "query", "q", "", "question (required)")
	askCmd.Flags().BoolVar(&askShowContext, "show-context", false, "print the retrieved context before the answer")
	askCmd.MarkFlagRequired("query")
}

func runAsk(cmd *cobra.Command, args []string) error {
	kb, _, err := loadKnowledgeBase(nil)
	if err != nil {
		return err
	}
	chat, history, err := newChat(kb)
	if err != nil {
		return err
	}
	defer history.Close()

	if askShowContext {
		fmt.Println(kb.GetRelevantContext(askQuery, 0))
		fmt.Println()
	}

	entry, err := chat.Ask(cmd.Context(), askQuery)
	if errors.Is(err, llm.ErrNotConfigured) {
		return fmt.Errorf("set %s to your API key: %w", GetConfig().LLM.APIKeyEnv, err)
	}
	if err != nil {
		return err
	}
	fmt.Println(entry.Response)
	return nil
}
