// Package rag implements the hybrid retrieval engine: a keyword-overlap
// matcher over the in-memory knowledge base, a Qdrant-backed vector index,
// and the retriever that merges the two under a fixed selection policy.
package rag

import (
	"context"
	"errors"

	"github.com/kartwise/kartwise/internal/kb"
)

// ErrDimensionMismatch is returned when a vector's length disagrees with the
// dimension the index was created with. It signals a configuration error
// that requires index recreation, never silent truncation or padding.
var ErrDimensionMismatch = errors.New("rag: vector dimension mismatch")

// Match is one ranked retrieval hit. Higher Score means ranked earlier
// within a single retrieval call; keyword scores and cosine scores are on
// different scales and are never compared across searchers.
type Match struct {
	// ID is the knowledge-base record ID.
	ID string
	// Score is the relevance score from the searcher that produced the match.
	Score float32
	// Record is the matched knowledge-base record.
	Record *kb.Record
}

// VectorStore is the external ANN index the retriever queries. Implemented
// by Store; tests substitute fakes.
type VectorStore interface {
	// Recreate tears down any existing index and creates a fresh one with
	// the given dimension.
	Recreate(ctx context.Context, dimension int) error
	// Upsert pushes records and their embeddings into the index. The two
	// slices are parallel and must have equal length.
	Upsert(ctx context.Context, records []kb.Record, vectors [][]float32) error
	// Query returns the top-k matches by cosine similarity.
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
	// Close releases the underlying connection.
	Close() error
}
