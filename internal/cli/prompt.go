package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	promptQuery string
	promptTopK  int
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Render the LLM prompt for a question without calling the model",
	Long: `Render the grounded prompt that ask would send, for manual use with any
LLM.

Examples:
  kbrag prompt -q "What does OwlVest invest in?" | pbcopy`,
	RunE: runPrompt,
}

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.Flags().StringVarP(&promptQuery, "query", "q", "", "question (required)")
	promptCmd.Flags().IntVarP(&promptTopK, "top-k", "k", 0, "number of chunks (default from config)")
	promptCmd.MarkFlagRequired("query")
}

func runPrompt(cmd *cobra.Command, args []string) error {
	kb, _, err := loadKnowledgeBase(nil)
	if err != nil {
		return err
	}
	chat, history, err := newChat(kb)
	if err != nil {
		return err
	}
	defer history.Close()

	prompt, err := chat.BuildPrompt(promptQuery, kb.GetRelevantContext(promptQuery, promptTopK))
	if err != nil {
		return err
	}
	fmt.Println(prompt)
	return nil
}
