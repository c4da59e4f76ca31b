// Package assistant hosts the conversational layer: it owns the active
// knowledge-base generation, routes classified intents into the hybrid
// retriever, and renders ranked matches into chat responses. A refresh
// builds a complete replacement generation and swaps it in atomically, so
// readers never observe a half-built knowledge base.
package assistant

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"sync"

	"github.com/kartwise/kartwise/internal/embed"
	"github.com/kartwise/kartwise/internal/intent"
	"github.com/kartwise/kartwise/internal/kb"
	"github.com/kartwise/kartwise/internal/logging"
	"github.com/kartwise/kartwise/internal/rag"
)

// Canned responses.
const (
	greetingMessage = "Hello! Welcome to Kartwise. I can help you find products, check prices, " +
		"and answer questions about delivery, returns, and payments. What are you looking for today?"
	thanksMessage = "You're welcome! Happy to help. Is there anything else you'd like to find?"
	noResultsMessage = "I couldn't find anything matching that. Try rephrasing, for example:\n" +
		"- smartphones under 15000\n" +
		"- best laptops for students\n" +
		"- delivery policy"
)

// jitterScale sizes the deterministic noise written in place of all-zero
// record embeddings, which the index cannot rank by cosine similarity.
const jitterScale = 0.01

// Config holds assistant construction settings.
type Config struct {
	// EmbedMaxFeatures caps the embedder vocabulary. Zero uses the embed
	// package default.
	EmbedMaxFeatures int
	// Policy is the retrieval merge policy. Nil uses defaults.
	Policy *rag.Policy
}

// generation is one immutable knowledge-base build: records, a fitted
// embedder, and the retriever wired over them. It is never mutated after
// construction; a refresh replaces it wholesale.
type generation struct {
	records   []kb.Record
	embedder  *embed.TFIDF
	retriever *rag.HybridRetriever
}

// Assistant is the chat entrypoint. Safe for concurrent use: chat holds a
// read lock for the whole retrieval, and refresh holds the write lock for
// the whole rebuild. Rebuilds are therefore exclusive: no chat request can
// query the index between teardown and repopulation.
type Assistant struct {
	builder *kb.Builder
	store   rag.VectorStore
	cfg     Config

	mu  sync.RWMutex
	gen *generation
}

// New constructs an Assistant and builds its initial knowledge-base
// generation. The store may be nil for keyword-only operation.
func New(ctx context.Context, builder *kb.Builder, store rag.VectorStore, cfg Config) (*Assistant, error) {
	if builder == nil {
		return nil, fmt.Errorf("assistant: builder must not be nil")
	}
	a := &Assistant{builder: builder, store: store, cfg: cfg}
	if err := a.Refresh(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Refresh rebuilds the knowledge base end-to-end: fetch records, refit the
// embedder, recreate the vector index with the new dimension, re-embed and
// upsert every record, then swap the new generation in. There is no
// partial-refresh mode. The write lock is held for the whole rebuild: the
// index is shared with in-flight chat requests, so queries must not run
// against it while it is torn down or half-populated. On failure the
// previous generation stays active.
func (a *Assistant) Refresh(ctx context.Context) error {
	log := logging.FromContext(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()

	records, err := a.builder.Build(ctx)
	if err != nil {
		return fmt.Errorf("assistant: knowledge-base build failed: %w", err)
	}

	embedder := embed.NewTFIDF(&embed.Config{MaxFeatures: a.cfg.EmbedMaxFeatures})
	dimension, err := embedder.Fit(kb.Texts(records))
	if err != nil {
		return fmt.Errorf("assistant: embedder fit failed: %w", err)
	}

	if a.store != nil {
		if err := a.store.Recreate(ctx, dimension); err != nil {
			return fmt.Errorf("assistant: index recreation failed: %w", err)
		}
		vectors := make([][]float32, len(records))
		for i := range records {
			vec, err := embedder.Embed(records[i].Text)
			if err != nil {
				return fmt.Errorf("assistant: embedding record %q failed: %w", records[i].ID, err)
			}
			if embed.IsZero(vec) {
				jitter(vec, records[i].ID)
			}
			vectors[i] = vec
		}
		if err := a.store.Upsert(ctx, records, vectors); err != nil {
			return fmt.Errorf("assistant: index upsert failed: %w", err)
		}
	}

	retriever, err := rag.NewHybridRetriever(embedder, a.store, rag.NewMatcher(records, nil), a.cfg.Policy)
	if err != nil {
		return fmt.Errorf("assistant: %w", err)
	}

	a.gen = &generation{records: records, embedder: embedder, retriever: retriever}

	log.Info("assistant: knowledge base refreshed",
		slog.Int("records", len(records)),
		slog.Int("dimension", dimension),
	)
	return nil
}

// Records returns the active generation's record count.
func (a *Assistant) Records() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.gen.records)
}

// Chat answers one user message. Greetings and thanks are answered without
// retrieval; every other intent runs through the hybrid retriever.
func (a *Assistant) Chat(ctx context.Context, text string) (string, error) {
	res := intent.Classify(text)
	switch res.Intent {
	case intent.Greeting:
		return greetingMessage, nil
	case intent.Thanks:
		return thanksMessage, nil
	}

	query := res.Query
	if res.Intent == intent.PolicyQuery && res.Entities.Topic != "" {
		query = res.Entities.Topic
	}
	if query == "" {
		query = strings.TrimSpace(strings.ToLower(text))
	}
	// Synonym expansion applies to product searches only. Price and policy
	// queries retrieve over the extracted phrase as-is.
	if res.Intent == intent.SearchProduct {
		query = intent.Enhance(query)
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	gen := a.gen

	policy := gen.retriever.Policy()
	matches, err := gen.retriever.Retrieve(ctx, query, policy.TopK, res.Entities.MaxPrice)
	if err != nil {
		return "", fmt.Errorf("assistant: retrieval failed: %w", err)
	}

	relevant := matches[:0:0]
	for _, m := range matches {
		if m.Score > policy.RelevanceFloor {
			relevant = append(relevant, m)
		}
	}
	if len(relevant) == 0 {
		return noResultsMessage, nil
	}
	return format(res, relevant), nil
}

// format renders ranked matches as a numbered list under an intent-specific
// header.
func format(res intent.Result, matches []rag.Match) string {
	var sb strings.Builder
	switch res.Intent {
	case intent.PriceQuery:
		sb.WriteString("Price information:\n\n")
	case intent.PolicyQuery:
		sb.WriteString("Policy information:\n\n")
	default:
		if res.Entities.MaxPrice > 0 {
			fmt.Fprintf(&sb, "Here are the products I found under ₹%d:\n\n", res.Entities.MaxPrice)
		} else {
			sb.WriteString("Here are the products I found:\n\n")
		}
	}

	for i, m := range matches {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, m.Record.Text)
		if m.Record.ProductURL != "" {
			fmt.Fprintf(&sb, "   %s\n", m.Record.ProductURL)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// jitter overwrites vec with small deterministic pseudo-random values
// derived from the record ID, so all-zero embeddings remain individually
// addressable in a cosine index. The same ID always produces the same
// vector, keeping rebuilds reproducible.
func jitter(vec []float32, id string) {
	h := fnv.New64a()
	h.Write([]byte(id))
	state := h.Sum64() | 1
	for i := range vec {
		// xorshift64
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		vec[i] = jitterScale * float32(state%1000) / 1000
	}
}
