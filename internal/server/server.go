package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"kbrag/internal/adapter/llm"
	"kbrag/internal/logger"
	"kbrag/internal/usecase"
)

const systemType = "Lexical RAG (Jaccard word overlap)"

// Server exposes the knowledge base and chat over HTTP.
type Server struct {
	kb       *usecase.KnowledgeBase
	chat     *usecase.ChatUseCase
	registry *prometheus.Registry
	metrics  *Metrics
	log      logger.Logger
	handler  http.Handler
}

func New(kb *usecase.KnowledgeBase, chat *usecase.ChatUseCase, log logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	s := &Server{
		kb:       kb,
		chat:     chat,
		registry: reg,
		metrics:  NewMetrics(reg),
		log:      log,
	}
	s.handler = cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(s.routes())
	return s
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.metrics.instrument)

	router.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	router.HandleFunc("/context", s.handleContext).Methods(http.MethodGet)
	router.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
	router.HandleFunc("/history", s.handleClearHistory).Methods(http.MethodDelete)
	router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return router
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type chatRequest struct {
	Query string `json:"query"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.chatFailures.WithLabelValues("bad_request").Inc()
		s.writeJSON(w, http.StatusBadRequest, chatResponse{Response: "Invalid request body."})
		return
	}

	entry, err := s.chat.Ask(r.Context(), req.Query)
	if err != nil {
		reason, msg := describeChatError(err)
		s.metrics.chatFailures.WithLabelValues(reason).Inc()
		if reason != "empty_query" {
			s.log.Warn("chat failed", "reason", reason, "err", err)
		}
		s.writeJSON(w, http.StatusOK, chatResponse{Response: msg})
		return
	}

	s.writeJSON(w, http.StatusOK, chatResponse{Response: entry.Response})
}

// describeChatError maps a chat failure to a metric label and the text
// shown to the user.
func describeChatError(err error) (string, string) {
	switch {
	case errors.Is(err, usecase.ErrEmptyQuery):
		return "empty_query", "No query provided."
	case errors.Is(err, llm.ErrNotConfigured):
		return "not_configured", "Please configure your LLM API key."
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout", "Request timeout. Please try again."
	default:
		return "upstream", fmt.Sprintf("Request failed: %v", err)
	}
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	k := 0
	if raw := r.URL.Query().Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "k must be an integer"})
			return
		}
		k = n
	}

	results := s.kb.Retrieve(query, k)
	s.metrics.contextChunks.Observe(float64(len(results)))

	s.writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"chunks":  results,
		"context": usecase.Assemble(results),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.chat.History(limit)
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.chat.ClearHistory(); err != nil {
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"history": []any{}})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.kb.Stats()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":             "running",
		"rag_ready":          s.kb.Ready(),
		"api_key_configured": s.chat.LLMConfigured(),
		"chat_history_count": s.chat.HistoryCount(),
		"documents_loaded":   stats.Chunks,
		"source_documents":   stats.Documents,
		"system_type":        systemType,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	state := "initializing"
	if s.kb.Ready() {
		state = "ready"
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"rag_system":     state,
		"api_configured": s.chat.LLMConfigured(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debug("failed to write response", "err", err)
	}
}
