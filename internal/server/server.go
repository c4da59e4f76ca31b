// Package server implements the HTTP server that exposes the Kartwise
// shopping assistant via a REST API. The server is started by the
// `kartwise serve` CLI command.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kartwise/kartwise/internal/logging"
	"github.com/kartwise/kartwise/internal/store"
)

// New constructs a Server from the provided assistant and config.
func New(asst chatter, cfg *Config) (*Server, error) {
	if asst == nil {
		return nil, fmt.Errorf("server: assistant must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// WriteTimeout must outlast a full knowledge-base refresh.
		cfg.WriteTimeout = 5 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.New()
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = defaultRateBurst
	}
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	s := &Server{
		assistant: asst,
		cfg:       cfg,
		log:       cfg.Logger,
		pingers:   cfg.Pingers,
		history:   cfg.History,
		metrics:   newServerMetrics(registry),
	}

	rl, stopRL := newRateLimiter(cfg.RateLimit, cfg.RateBurst, cfg.Logger)
	s.stopRL = stopRL

	if cfg.APIKey == "" {
		s.log.Warn("server: API key not set, authentication disabled")
	}
	protected := func(name string, h http.HandlerFunc) http.Handler {
		return authMiddleware(cfg.APIKey, rl.middleware(s.instrument(name, h)))
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/chat", protected("chat", s.handleChat))
	mux.Handle("POST /api/refresh", protected("refresh", s.handleRefresh))
	mux.Handle("GET /api/health", s.instrument("health", s.handleHealth))
	mux.Handle("GET /api/ready", s.instrument("ready", s.handleReady))
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      requestLogger(cfg.Logger, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	defer s.stopRL()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// handleChat handles POST /api/chat requests.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}
	if req.Session == "" {
		req.Session = "default"
	}

	start := time.Now()
	reply, err := s.assistant.Chat(r.Context(), req.Message)
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.chatRequestsTotal.WithLabelValues("error").Inc()
		s.metrics.chatDurationSeconds.WithLabelValues("error").Observe(elapsed.Seconds())
		log.Error("chat failed", slog.Any("error", err))
		http.Error(w, "chat failed", http.StatusInternalServerError)
		return
	}
	s.metrics.chatRequestsTotal.WithLabelValues("ok").Inc()
	s.metrics.chatDurationSeconds.WithLabelValues("ok").Observe(elapsed.Seconds())

	s.persist(r.Context(), req.Session, req.Message, reply)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(chatResponse{Reply: reply}); err != nil {
		log.Error("chat encode error", slog.Any("error", err))
	}
}

// persist records both turns of an exchange in the history store, if one is
// configured. History failures are logged, never surfaced to the client.
func (s *Server) persist(ctx context.Context, session, message, reply string) {
	if s.history == nil {
		return
	}
	log := logging.FromContext(ctx)
	if err := s.history.Append(ctx, session, store.RoleUser, message); err != nil {
		log.Warn("history: append user turn failed", slog.Any("error", err))
		return
	}
	if err := s.history.Append(ctx, session, store.RoleAssistant, reply); err != nil {
		log.Warn("history: append assistant turn failed", slog.Any("error", err))
	}
}

// handleRefresh handles POST /api/refresh requests. The rebuild runs
// synchronously; the response reports the new knowledge-base size.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	if err := s.assistant.Refresh(r.Context()); err != nil {
		s.metrics.refreshTotal.WithLabelValues("error").Inc()
		log.Error("refresh failed", slog.Any("error", err))
		http.Error(w, "refresh failed", http.StatusInternalServerError)
		return
	}
	s.metrics.refreshTotal.WithLabelValues("ok").Inc()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(refreshResponse{Records: s.assistant.Records()}); err != nil {
		log.Error("refresh encode error", slog.Any("error", err))
	}
}
