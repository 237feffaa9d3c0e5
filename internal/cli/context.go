package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	contextQuery  string
	contextTopK   int
	contextOutput string
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Print the assembled context block for a query",
	Long: `Retrieve the best matching chunks and print them as the context block
handed to the LLM.

Examples:
  kbrag context -q "How are returns calculated?"
  kbrag context -q "fees" -k 5 -o context.txt`,
	RunE: runContext,
}

func init() {
	rootCmd.AddCommand(contextCmd)
	contextCmd.Flags().StringVarP(&contextQuery, "query", "q", "", "query (required)")
	contextCmd.Flags().IntVarP(&contextTopK, "top-k", "k", 0, "number of chunks (default from config)")
	contextCmd.Flags().StringVarP(&contextOutput, "output", "o", "", "write the context to a file instead of stdout")
	contextCmd.MarkFlagRequired("query")
}

func runContext(cmd *cobra.Command, args []string) error {
	kb, _, err := loadKnowledgeBase(nil)
	if err != nil {
		return err
	}

	text := kb.GetRelevantContext(contextQuery, contextTopK)

	if contextOutput != "" {
		if err := os.WriteFile(contextOutput, []byte(text+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Printf("Context written to: %s\n", contextOutput)
		return nil
	}
	fmt.Println(text)
	return nil
}
