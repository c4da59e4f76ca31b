package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kartwise/kartwise/internal/assistant"
	"github.com/kartwise/kartwise/internal/catalog"
	"github.com/kartwise/kartwise/internal/kb"
	"github.com/kartwise/kartwise/internal/rag"
	"github.com/kartwise/kartwise/internal/server"
)

// buildAssistant wires the catalog client, knowledge-base builder, vector
// store, and retrieval policy from the environment and constructs the
// assistant (building its initial knowledge base). keywordOnly skips the
// Qdrant index entirely.
//
// The returned cleanup closes the vector store connection and must be called
// on shutdown. The pingers probe the external dependencies actually in use.
func buildAssistant(ctx context.Context, log *slog.Logger, keywordOnly bool) (*assistant.Assistant, []server.Pinger, func(), error) {
	var pingers []server.Pinger

	var searcher kb.Searcher
	if baseURL := os.Getenv("CATALOG_BASE_URL"); baseURL != "" {
		client, err := catalog.NewClient(&catalog.Config{
			BaseURL: baseURL,
			Timeout: time.Duration(envInt("CATALOG_TIMEOUT_SECS", 0)) * time.Second,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("catalog client: %w", err)
		}
		searcher = client
		pingers = append(pingers, client)
	} else {
		log.Info("catalog: CATALOG_BASE_URL not set, using built-in fallback products")
	}

	builder := kb.NewBuilder(searcher, &kb.BuilderConfig{
		Queries: envQueries(),
	})

	var vectorStore rag.VectorStore
	cleanup := func() {}
	if !keywordOnly {
		qs, err := rag.NewStore(&rag.QdrantConfig{
			Host:       os.Getenv("QDRANT_HOST"),
			Port:       envInt("QDRANT_PORT", 0),
			Collection: envStr("QDRANT_COLLECTION", "kartwise_products"),
			APIKey:     os.Getenv("QDRANT_API_KEY"),
			UseTLS:     os.Getenv("QDRANT_TLS") == "true",
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("qdrant store: %w", err)
		}
		vectorStore = qs
		cleanup = func() { _ = qs.Close() }
		pingers = append(pingers, qs)
	} else {
		log.Info("retrieval: vector index disabled, keyword search only")
	}

	policy := rag.DefaultPolicy()
	if v := envInt("RETRIEVAL_TOP_K", 0); v > 0 {
		policy.TopK = v
	}
	if v := envFloat("RETRIEVAL_LOW_CONFIDENCE", 0); v > 0 {
		policy.LowConfidence = float32(v)
	}

	asst, err := assistant.New(ctx, builder, vectorStore, assistant.Config{
		EmbedMaxFeatures: envInt("EMBED_MAX_FEATURES", 0),
		Policy:           &policy,
	})
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return asst, pingers, cleanup, nil
}

// envQueries parses the comma-separated CATALOG_QUERIES list, falling back
// to the built-in default query set when unset.
func envQueries() []string {
	raw := os.Getenv("CATALOG_QUERIES")
	if raw == "" {
		return nil
	}
	var queries []string
	for _, q := range strings.Split(raw, ",") {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	return queries
}

// envStr returns the env var value or a default when unset.
func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt returns the env var parsed as int, or fallback when unset or invalid.
func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// envFloat returns the env var parsed as float64, or fallback when unset or invalid.
func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
