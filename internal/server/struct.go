package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kartwise/kartwise/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 5 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 10 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// History is the optional chat history store. If nil, conversations are
	// not persisted.
	History store.ConversationStore
	// Registry receives the server's Prometheus metrics and backs GET /metrics.
	// If nil, a private registry is created.
	Registry *prometheus.Registry
}

// chatter is the interface the chat and refresh handlers call.
// *assistant.Assistant satisfies it; tests inject a fake.
type chatter interface {
	// Chat answers one user message.
	Chat(ctx context.Context, text string) (string, error)
	// Refresh rebuilds the knowledge base and vector index.
	Refresh(ctx context.Context) error
	// Records returns the active knowledge-base record count.
	Records() int
}

// Server is the HTTP server that wraps the shopping assistant.
type Server struct {
	// assistant handles chat and refresh requests.
	assistant chatter
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// history persists conversations when configured.
	history store.ConversationStore
	// metrics holds the Prometheus instruments owned by this server.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background sweeper goroutine on shutdown.
	stopRL func()
}

// chatRequest is the JSON body for POST /api/chat.
type chatRequest struct {
	// Message is the user's natural language query.
	Message string `json:"message"`
	// Session identifies the conversation thread for history persistence.
	// Defaults to "default" when empty.
	Session string `json:"session,omitempty"`
}

// chatResponse is the JSON response for POST /api/chat.
type chatResponse struct {
	// Reply is the assistant's formatted answer.
	Reply string `json:"reply"`
}

// refreshResponse is the JSON response for POST /api/refresh.
type refreshResponse struct {
	// Records is the record count of the freshly built knowledge base.
	Records int `json:"records"`
}
