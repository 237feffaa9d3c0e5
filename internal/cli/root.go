package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kbrag/config"
	"kbrag/internal/logger"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
	log     logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "kbrag",
	Short: "Knowledge-base RAG - ground LLM answers in local documents",
	Long: `kbrag loads a small set of knowledge-base documents, splits them into
overlapping sentence chunks and retrieves the chunks that share the most
words with a question. The retrieved context grounds an LLM answer.

Example usage:
  kbrag load                          # Load the corpus and print statistics
  kbrag query -q "investment fees"    # Show the best matching chunks
  kbrag ask -q "What is OwlVest?"     # Answer with retrieved context
  kbrag serve                         # Start the HTTP chat service`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		log = logger.New(logger.Config{Level: cfg.Logging.Level, JSON: cfg.Logging.JSON})
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./kbrag.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
