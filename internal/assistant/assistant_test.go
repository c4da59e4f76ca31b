package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kartwise/kartwise/internal/kb"
	"github.com/kartwise/kartwise/internal/rag"
)

// fakeStore records index lifecycle calls and serves scripted matches.
// Setting recreateGate makes the next Recreate block until the gate closes;
// recreateEntered is closed once the blocked call has been reached.
type fakeStore struct {
	recreates       int
	lastDim         int
	upsertIDs       []string
	vectorDims      map[int]bool
	queries         int
	matches         []rag.Match
	recreateErr     error
	recreateGate    chan struct{}
	recreateEntered chan struct{}
}

func (f *fakeStore) Recreate(_ context.Context, dimension int) error {
	if f.recreateErr != nil {
		return f.recreateErr
	}
	if f.recreateGate != nil {
		if f.recreateEntered != nil {
			close(f.recreateEntered)
			f.recreateEntered = nil
		}
		<-f.recreateGate
	}
	f.recreates++
	f.lastDim = dimension
	return nil
}

func (f *fakeStore) Upsert(_ context.Context, records []kb.Record, vectors [][]float32) error {
	f.upsertIDs = nil
	f.vectorDims = make(map[int]bool)
	for i := range records {
		f.upsertIDs = append(f.upsertIDs, records[i].ID)
		f.vectorDims[len(vectors[i])] = true
	}
	return nil
}

func (f *fakeStore) Query(context.Context, []float32, int) ([]rag.Match, error) {
	f.queries++
	return f.matches, nil
}

func (f *fakeStore) Close() error { return nil }

// newTestAssistant builds an assistant over the fallback catalog only.
func newTestAssistant(t *testing.T, store rag.VectorStore) *Assistant {
	t.Helper()
	a, err := New(context.Background(), kb.NewBuilder(nil, nil), store, Config{})
	if err != nil {
		t.Fatalf("new assistant: %v", err)
	}
	return a
}

func Test_Assistant_GreetingSkipsRetrieval(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	a := newTestAssistant(t, store)

	reply, err := a.Chat(context.Background(), "hello")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != greetingMessage {
		t.Errorf("got %q", reply)
	}
	if store.queries != 0 {
		t.Errorf("greeting must not hit the vector store, got %d queries", store.queries)
	}
}

func Test_Assistant_Thanks(t *testing.T) {
	t.Parallel()
	a := newTestAssistant(t, nil)

	reply, err := a.Chat(context.Background(), "thanks a lot!")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != thanksMessage {
		t.Errorf("got %q", reply)
	}
}

func Test_Assistant_PriceConstrainedSearch(t *testing.T) {
	t.Parallel()
	a := newTestAssistant(t, nil)

	reply, err := a.Chat(context.Background(), "smartphones under 15000")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !strings.HasPrefix(reply, "Here are the products I found under ₹15000:") {
		t.Errorf("header missing: %q", reply)
	}
	if !strings.Contains(reply, "1. Samsung Galaxy M14 5G - Price: ₹12,990") {
		t.Errorf("want Samsung Galaxy M14 5G as item 1:\n%s", reply)
	}
	if strings.Contains(reply, "₹17,999") {
		t.Errorf("over-budget product leaked into response:\n%s", reply)
	}
}

func Test_Assistant_PolicyQuery(t *testing.T) {
	t.Parallel()
	a := newTestAssistant(t, nil)

	reply, err := a.Chat(context.Background(), "what is your delivery policy")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !strings.HasPrefix(reply, "Policy information:") {
		t.Errorf("header missing: %q", reply)
	}
	if !strings.Contains(reply, "Cash on Delivery") {
		t.Errorf("delivery record missing:\n%s", reply)
	}
}

func Test_Assistant_ComparisonSearchesSubjects(t *testing.T) {
	t.Parallel()
	a := newTestAssistant(t, nil)

	reply, err := a.Chat(context.Background(), "compare samsung galaxy and redmi")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !strings.Contains(reply, "Samsung Galaxy") {
		t.Errorf("compared subject missing from results:\n%s", reply)
	}
}

func Test_Assistant_PriceQueryNotEnhanced(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	a := newTestAssistant(t, store)

	// "iphone" is absent from the knowledge base. Synonym expansion would
	// widen it to generic smartphone terms, but price queries must retrieve
	// over the extracted phrase as-is.
	reply, err := a.Chat(context.Background(), "price of iphone")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != noResultsMessage {
		t.Errorf("got %q", reply)
	}
}

func Test_Assistant_NoResults(t *testing.T) {
	t.Parallel()
	a := newTestAssistant(t, nil)

	reply, err := a.Chat(context.Background(), "quantum flux capacitor")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != noResultsMessage {
		t.Errorf("got %q", reply)
	}
}

func Test_Assistant_RefreshDeterministic(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	a := newTestAssistant(t, store)

	firstDim := store.lastDim
	firstIDs := append([]string(nil), store.upsertIDs...)

	if err := a.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if store.recreates != 2 {
		t.Errorf("want 2 index recreations, got %d", store.recreates)
	}
	if store.lastDim != firstDim {
		t.Errorf("dimension changed across identical rebuilds: %d vs %d", firstDim, store.lastDim)
	}
	if len(store.upsertIDs) != len(firstIDs) {
		t.Fatalf("record count changed: %d vs %d", len(firstIDs), len(store.upsertIDs))
	}
	for i := range firstIDs {
		if store.upsertIDs[i] != firstIDs[i] {
			t.Errorf("record %d: %q vs %q", i, firstIDs[i], store.upsertIDs[i])
		}
	}
}

func Test_Assistant_UpsertVectorsMatchDimension(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	newTestAssistant(t, store)

	if len(store.vectorDims) != 1 || !store.vectorDims[store.lastDim] {
		t.Errorf("all upserted vectors must have the index dimension %d, got %v",
			store.lastDim, store.vectorDims)
	}
}

func Test_Assistant_RefreshFailureKeepsOldGeneration(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	a := newTestAssistant(t, store)

	store.recreateErr = errors.New("qdrant down")
	if err := a.Refresh(context.Background()); err == nil {
		t.Fatal("want refresh error")
	}

	// The previous generation must still answer queries.
	reply, err := a.Chat(context.Background(), "thanks")
	if err != nil || reply != thanksMessage {
		t.Errorf("old generation broken after failed refresh: %q, %v", reply, err)
	}
	if a.Records() == 0 {
		t.Error("old generation records lost")
	}
}

func Test_Assistant_RefreshExcludesChat(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	a := newTestAssistant(t, store)

	entered := make(chan struct{})
	gate := make(chan struct{})
	store.recreateEntered = entered
	store.recreateGate = gate

	refreshDone := make(chan error, 1)
	go func() { refreshDone <- a.Refresh(context.Background()) }()
	<-entered

	// The rebuild now holds the index torn down. A concurrent chat must
	// wait for the new generation instead of querying the rebuilt index
	// mid-flight.
	chatDone := make(chan string, 1)
	go func() {
		reply, err := a.Chat(context.Background(), "smartphones")
		if err != nil {
			reply = ""
		}
		chatDone <- reply
	}()

	select {
	case <-chatDone:
		t.Fatal("chat answered while the knowledge base was mid-rebuild")
	case <-time.After(50 * time.Millisecond):
	}

	close(gate)
	if err := <-refreshDone; err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if reply := <-chatDone; !strings.Contains(reply, "Samsung Galaxy") {
		t.Errorf("chat after rebuild: %q", reply)
	}
}

func Test_Jitter_Deterministic(t *testing.T) {
	t.Parallel()
	a := make([]float32, 16)
	b := make([]float32, 16)
	jitter(a, "fb_mobile_1")
	jitter(b, "fb_mobile_1")

	nonZero := false
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("jitter not deterministic at %d: %v vs %v", i, a[i], b[i])
		}
		if a[i] != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Error("jitter produced an all-zero vector")
	}

	c := make([]float32, 16)
	jitter(c, "fb_mobile_2")
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different IDs should produce different jitter")
	}
}
