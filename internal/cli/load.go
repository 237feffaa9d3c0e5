package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the knowledge base and print statistics",
	Long: `Load the configured knowledge-base documents, chunk them and report
what was loaded. Unreadable documents are listed as warnings.

Examples:
  kbrag load
  kbrag load -d /path/to/project`,
	Args: cobra.NoArgs,
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	dir := GetConfig().CorpusDir(GetRootDir())
	fmt.Printf("Loading %s...\n", dir)

	kb, failed, err := loadKnowledgeBase(newProgress("Loading"))
	if err != nil {
		return err
	}
	stats := kb.Stats()

	fmt.Printf("\nLoad complete:\n")
	fmt.Printf("  Documents:      %d\n", stats.Documents)
	fmt.Printf("  Chunks:         %d\n", stats.Chunks)
	fmt.Printf("  Avg chunk len:  %.1f\n", stats.AvgChunkLen)
	fmt.Printf("  Source tag:     %s\n", stats.SourceTag)
	printLoadWarnings(failed)

	if !kb.Ready() {
		return fmt.Errorf("no documents could be loaded from %s", dir)
	}
	return nil
}
