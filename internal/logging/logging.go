// Package logging builds the [log/slog] logger shared by the kartwise CLI
// and HTTP server, and plumbs it through context values with [WithLogger] /
// [FromContext].
//
// Environment variables:
//
//	KARTWISE_LOG_LEVEL  = debug | info | warn | error  (default: info)
//	KARTWISE_LOG_FORMAT = text | json                  (default: text)
//
// Text is the default because kartwise is used interactively from the chat
// REPL; deployments running `kartwise serve` behind a log collector set
// KARTWISE_LOG_FORMAT=json.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// contextKey is an unexported type for context keys in this package.
type contextKey struct{}

// New constructs the kartwise [*slog.Logger] from environment variables.
// Output goes to stderr so REPL prompts and chat replies on stdout stay
// clean.
func New() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(os.Getenv("KARTWISE_LOG_LEVEL")),
	}

	var handler slog.Handler
	if strings.EqualFold(os.Getenv("KARTWISE_LOG_FORMAT"), "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the [*slog.Logger] stored in ctx.
// If no logger is present it returns [slog.Default] so callers never
// need to nil-check.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// ParseLevel converts a KARTWISE_LOG_LEVEL value to a [slog.Level].
// Unknown or empty values default to Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
