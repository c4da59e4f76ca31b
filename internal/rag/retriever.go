package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kartwise/kartwise/internal/embed"
	"github.com/kartwise/kartwise/internal/logging"
)

// Policy defaults.
const (
	// DefaultTopK is the result count when the caller passes 0.
	DefaultTopK = 5
	// DefaultLowConfidence is the cosine score under which vector results
	// yield to non-empty keyword results.
	DefaultLowConfidence = 0.3
	// DefaultPriceHeadroom multiplies topK for vector queries under a price
	// filter, leaving room for post-filter losses.
	DefaultPriceHeadroom = 3
	// DefaultRelevanceFloor is the score at or under which a match is not
	// worth showing; callers with no match above it render a no-results
	// message.
	DefaultRelevanceFloor = 0.01
)

// Policy names the selection heuristics of the hybrid merge so their values
// are auditable and testable rather than buried in branch code.
type Policy struct {
	// TopK is the default result count.
	TopK int
	// LowConfidence is the vector-score threshold for preferring keyword
	// results.
	LowConfidence float32
	// PriceHeadroom is the vector-query over-fetch factor under a price
	// filter.
	PriceHeadroom int
	// RelevanceFloor is the minimum score a match must exceed to count as a
	// real result.
	RelevanceFloor float32
}

// DefaultPolicy returns the standard merge policy.
func DefaultPolicy() Policy {
	return Policy{
		TopK:           DefaultTopK,
		LowConfidence:  DefaultLowConfidence,
		PriceHeadroom:  DefaultPriceHeadroom,
		RelevanceFloor: DefaultRelevanceFloor,
	}
}

// Embedder converts query text into the fixed-dimension vector space of the
// current knowledge-base generation. Satisfied by embed.TFIDF.
type Embedder interface {
	Embed(text string) ([]float32, error)
}

// HybridRetriever merges keyword and vector search results under Policy.
// Keyword results are always computed first and serve as the fallback for
// every vector-side failure mode.
type HybridRetriever struct {
	embedder Embedder
	store    VectorStore
	keywords *Matcher
	policy   Policy
}

// NewHybridRetriever constructs a HybridRetriever. The store may be nil for
// keyword-only operation (no vector index configured).
func NewHybridRetriever(embedder Embedder, store VectorStore, keywords *Matcher, policy *Policy) (*HybridRetriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("rag: embedder must not be nil")
	}
	if keywords == nil {
		return nil, fmt.Errorf("rag: keyword matcher must not be nil")
	}
	r := &HybridRetriever{
		embedder: embedder,
		store:    store,
		keywords: keywords,
		policy:   DefaultPolicy(),
	}
	if policy != nil {
		r.policy = *policy
	}
	if r.policy.TopK <= 0 {
		r.policy.TopK = DefaultTopK
	}
	if r.policy.PriceHeadroom <= 0 {
		r.policy.PriceHeadroom = DefaultPriceHeadroom
	}
	return r, nil
}

// Policy returns the retriever's merge policy.
func (r *HybridRetriever) Policy() Policy { return r.policy }

// Retrieve returns up to topK matches for the enhanced query. maxPrice=0
// means no price constraint; topK<=0 uses the policy default. Vector-side
// failures degrade to keyword results and are never surfaced as errors.
func (r *HybridRetriever) Retrieve(ctx context.Context, query string, topK, maxPrice int) ([]Match, error) {
	log := logging.FromContext(ctx)
	if topK <= 0 {
		topK = r.policy.TopK
	}

	keyword := r.keywords.Search(query, topK, maxPrice)
	if r.store == nil {
		return keyword, nil
	}

	vector, err := r.embedder.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("rag: embedding query failed: %w", err)
	}
	// A zero vector has no direction; cosine similarity against it is
	// meaningless, so vector search is skipped entirely.
	if embed.IsZero(vector) {
		return keyword, nil
	}

	limit := topK
	if maxPrice > 0 {
		limit = topK * r.policy.PriceHeadroom
	}
	vectorMatches, err := r.store.Query(ctx, vector, limit)
	if err != nil {
		log.Warn("rag: vector query failed, using keyword results",
			slog.String("query", query),
			slog.Any("error", err),
		)
		return keyword, nil
	}
	if len(vectorMatches) == 0 {
		return keyword, nil
	}

	if maxPrice > 0 {
		// Strict filter: unparseable prices are dropped here, unlike the
		// lenient keyword-side filter.
		filtered := make([]Match, 0, len(vectorMatches))
		for _, m := range vectorMatches {
			price, ok := ParsePrice(m.Record.Price)
			if !ok || price > maxPrice {
				continue
			}
			filtered = append(filtered, m)
		}
		if len(filtered) > 0 {
			if len(filtered) > topK {
				filtered = filtered[:topK]
			}
			return filtered, nil
		}
	}

	if vectorMatches[0].Score < r.policy.LowConfidence &&
		len(keyword) > 0 && keyword[0].Score > 0 {
		return keyword, nil
	}

	if len(vectorMatches) > topK {
		vectorMatches = vectorMatches[:topK]
	}
	return vectorMatches, nil
}
