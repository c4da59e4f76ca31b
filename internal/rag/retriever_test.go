package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/kartwise/kartwise/internal/embed"
	"github.com/kartwise/kartwise/internal/kb"
)

// fakeStore is a scripted VectorStore that records query calls.
type fakeStore struct {
	matches    []Match
	queryErr   error
	queries    int
	lastTopK   int
	lastVector []float32
}

func (f *fakeStore) Recreate(context.Context, int) error                  { return nil }
func (f *fakeStore) Upsert(context.Context, []kb.Record, [][]float32) error { return nil }
func (f *fakeStore) Close() error                                         { return nil }

func (f *fakeStore) Query(_ context.Context, vector []float32, topK int) ([]Match, error) {
	f.queries++
	f.lastTopK = topK
	f.lastVector = vector
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if len(f.matches) > topK {
		return f.matches[:topK], nil
	}
	return f.matches, nil
}

// newTestRetriever fits an embedder over the shared record set and wires it
// to the given store.
func newTestRetriever(t *testing.T, store VectorStore) *HybridRetriever {
	t.Helper()
	records := testRecords()

	embedder := embed.NewTFIDF(nil)
	if _, err := embedder.Fit(kb.Texts(records)); err != nil {
		t.Fatalf("fit: %v", err)
	}
	r, err := NewHybridRetriever(embedder, store, NewMatcher(records, nil), nil)
	if err != nil {
		t.Fatalf("new retriever: %v", err)
	}
	return r
}

func vectorMatch(id, price string, score float32) Match {
	return Match{ID: id, Score: score, Record: &kb.Record{ID: id, Price: price}}
}

func Test_HybridRetriever_ZeroVectorSkipsStore(t *testing.T) {
	t.Parallel()
	store := &fakeStore{matches: []Match{vectorMatch("v1", "₹1,000", 0.9)}}
	r := newTestRetriever(t, store)

	// "mobile" shares no vocabulary term with the corpus but hits the
	// smartphone synonym cluster in keyword search.
	matches, err := r.Retrieve(context.Background(), "mobile", 5, 0)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if store.queries != 0 {
		t.Errorf("vector store must not be queried for a zero vector")
	}
	if len(matches) == 0 {
		t.Error("want keyword matches")
	}
}

func Test_HybridRetriever_StoreFailureFallsBackToKeyword(t *testing.T) {
	t.Parallel()
	store := &fakeStore{queryErr: errors.New("connection refused")}
	r := newTestRetriever(t, store)

	matches, err := r.Retrieve(context.Background(), "samsung galaxy smartphone", 5, 0)
	if err != nil {
		t.Fatalf("store failure must not surface: %v", err)
	}
	if store.queries != 1 {
		t.Errorf("want 1 query attempt, got %d", store.queries)
	}
	if len(matches) == 0 || matches[0].ID != "fb_mobile_1" {
		t.Errorf("want keyword fallback with fb_mobile_1 first, got %+v", matches)
	}
}

func Test_HybridRetriever_EmptyVectorResultsFallBack(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	r := newTestRetriever(t, store)

	matches, err := r.Retrieve(context.Background(), "samsung galaxy smartphone", 5, 0)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(matches) == 0 {
		t.Error("want keyword fallback for empty vector results")
	}
}

func Test_HybridRetriever_HighConfidenceVectorWins(t *testing.T) {
	t.Parallel()
	store := &fakeStore{matches: []Match{
		vectorMatch("v1", "₹1,000", 0.9),
		vectorMatch("v2", "₹2,000", 0.8),
	}}
	r := newTestRetriever(t, store)

	matches, err := r.Retrieve(context.Background(), "samsung galaxy smartphone", 5, 0)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(matches) != 2 || matches[0].ID != "v1" {
		t.Errorf("want vector results, got %+v", matches)
	}
}

func Test_HybridRetriever_LowConfidencePrefersKeyword(t *testing.T) {
	t.Parallel()
	store := &fakeStore{matches: []Match{vectorMatch("v1", "₹1,000", 0.1)}}
	r := newTestRetriever(t, store)

	matches, err := r.Retrieve(context.Background(), "samsung galaxy smartphone", 5, 0)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(matches) == 0 || matches[0].ID == "v1" {
		t.Errorf("low-confidence vector result must yield to keyword, got %+v", matches)
	}
}

func Test_HybridRetriever_LowConfidenceKeptWhenNoKeywordResults(t *testing.T) {
	t.Parallel()
	store := &fakeStore{matches: []Match{vectorMatch("v1", "₹1,000", 0.1)}}
	records := testRecords()
	embedder := embed.NewTFIDF(nil)
	if _, err := embedder.Fit(kb.Texts(records)); err != nil {
		t.Fatalf("fit: %v", err)
	}
	// A matcher over an empty record set yields no keyword results.
	r, err := NewHybridRetriever(embedder, store, NewMatcher(nil, nil), nil)
	if err != nil {
		t.Fatalf("new retriever: %v", err)
	}

	matches, err := r.Retrieve(context.Background(), "samsung galaxy smartphone", 5, 0)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "v1" {
		t.Errorf("want low-confidence vector result kept, got %+v", matches)
	}
}

func Test_HybridRetriever_PriceFilterStrict(t *testing.T) {
	t.Parallel()
	store := &fakeStore{matches: []Match{
		vectorMatch("over", "₹12,990", 0.9),
		vectorMatch("unparseable", "call us", 0.8),
		vectorMatch("within", "₹9,999", 0.7),
	}}
	r := newTestRetriever(t, store)

	matches, err := r.Retrieve(context.Background(), "samsung galaxy smartphone", 5, 12000)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "within" {
		t.Errorf("strict filter: want only 'within', got %+v", matches)
	}
}

func Test_HybridRetriever_PriceFilterHeadroom(t *testing.T) {
	t.Parallel()
	store := &fakeStore{matches: []Match{vectorMatch("v1", "₹1,000", 0.9)}}
	r := newTestRetriever(t, store)

	if _, err := r.Retrieve(context.Background(), "samsung galaxy smartphone", 5, 12000); err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if store.lastTopK != 15 {
		t.Errorf("want over-fetch of 3×5=15 under a price filter, got %d", store.lastTopK)
	}
}

func Test_HybridRetriever_PriceFilterEmptyFallsThrough(t *testing.T) {
	t.Parallel()
	// All vector matches fail the strict filter; the high top score keeps
	// vector results preferred, which are then returned unfiltered per the
	// fall-through policy ordering: filter empty, confidence high, vector
	// results win.
	store := &fakeStore{matches: []Match{vectorMatch("over", "₹99,999", 0.9)}}
	r := newTestRetriever(t, store)

	matches, err := r.Retrieve(context.Background(), "samsung galaxy smartphone", 5, 12000)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "over" {
		t.Errorf("got %+v", matches)
	}
}

func Test_HybridRetriever_NilStoreIsKeywordOnly(t *testing.T) {
	t.Parallel()
	r := newTestRetriever(t, nil)

	matches, err := r.Retrieve(context.Background(), "samsung galaxy smartphone", 5, 0)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(matches) == 0 || matches[0].ID != "fb_mobile_1" {
		t.Errorf("want keyword results, got %+v", matches)
	}
}

func Test_HybridRetriever_TopKDefault(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	r := newTestRetriever(t, store)

	if _, err := r.Retrieve(context.Background(), "samsung galaxy smartphone", 0, 0); err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if store.lastTopK != DefaultTopK {
		t.Errorf("want default topK %d, got %d", DefaultTopK, store.lastTopK)
	}
}
