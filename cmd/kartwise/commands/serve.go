package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kartwise/kartwise/internal/logging"
	"github.com/kartwise/kartwise/internal/server"
	"github.com/kartwise/kartwise/internal/store"
)

// NewServeCmd constructs the `kartwise serve` command, which starts the
// HTTP server exposing the assistant as a REST API.
func NewServeCmd() *cobra.Command {
	var host string
	var port int
	var keywordOnly bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Kartwise HTTP server",
		Long: `Start the Kartwise HTTP server on localhost.

The server exposes POST /api/chat and POST /api/refresh, plus health,
readiness, and Prometheus metrics endpoints. Set KARTWISE_API_KEY to
require Bearer authentication on the API routes.

Examples:
  kartwise serve
  kartwise serve --port 9090
  QDRANT_HOST=qdrant.internal kartwise serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			asst, pingers, cleanup, err := buildAssistant(ctx, log, keywordOnly)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer cleanup()

			// Open chat history store. KARTWISE_HISTORY_DB overrides the
			// default path (~/.kartwise/history.db). Set to "disabled" to disable.
			var historyStore store.ConversationStore
			dbPath := os.Getenv("KARTWISE_HISTORY_DB")
			if dbPath != "disabled" {
				if dbPath == "" {
					dbPath, err = store.DefaultDBPath()
					if err != nil {
						log.Warn("history: could not resolve default DB path, disabling", slog.Any("error", err))
					}
				}
				if dbPath != "" {
					hs, hsErr := store.Open(dbPath)
					if hsErr != nil {
						log.Warn("history: failed to open store, disabling", slog.Any("error", hsErr))
					} else {
						historyStore = hs
						defer func() { _ = hs.Close() }()
						log.Info("history: store opened", slog.String("path", dbPath))
					}
				}
			} else {
				log.Info("history: disabled via KARTWISE_HISTORY_DB=disabled")
			}

			srv, err := server.New(asst, &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: pingers,
				APIKey:  os.Getenv("KARTWISE_API_KEY"),
				History: historyStore,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")
	cmd.Flags().BoolVar(&keywordOnly, "keyword-only", false, "Skip the Qdrant vector index and use keyword search only")

	return cmd
}
