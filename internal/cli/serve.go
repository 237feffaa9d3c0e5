package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"kbrag/internal/logger"
	"kbrag/internal/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat service",
	Long: `Load the knowledge base and serve /chat, /context, /history, /status,
/health and /metrics until interrupted.

Examples:
  kbrag serve
  kbrag serve --host 0.0.0.0 --port 8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	if cfg.Server.Debug {
		log = logger.New(logger.Config{Level: "debug", JSON: cfg.Logging.JSON})
	}

	kb, _, err := loadKnowledgeBase(nil)
	if err != nil {
		return err
	}
	stats := kb.Stats()
	log.Info("knowledge base ready", "documents", stats.Documents, "chunks", stats.Chunks, "ready", kb.Ready())

	chat, history, err := newChat(kb)
	if err != nil {
		return err
	}
	defer history.Close()
	if !chat.LLMConfigured() {
		log.Warn("llm api key not configured; /chat will report it", "env", cfg.LLM.APIKeyEnv)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(kb, chat, log).Run(ctx, cfg.Addr()); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
