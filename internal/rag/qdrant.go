package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"github.com/kartwise/kartwise/internal/kb"
	"github.com/kartwise/kartwise/internal/logging"
)

// Index lifecycle constants. A freshly created collection is polled for
// readiness; if readiness is never observed within the bound the store
// proceeds anyway and later query failures degrade to keyword results.
const (
	upsertBatchSize   = 100
	readinessInterval = 2 * time.Second
	readinessTimeout  = 60 * time.Second
)

// QdrantConfig holds connection parameters for a Qdrant instance.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// Collection is the Qdrant collection name to use.
	Collection string

	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
}

// Store implements VectorStore backed by a Qdrant collection. Point IDs are
// numeric upsert positions; the knowledge-base record ID travels in the
// payload, since record IDs like "fb_mobile_1" are neither integers nor
// UUIDs.
type Store struct {
	// client is the underlying Qdrant gRPC client.
	client *qdrant.Client

	// cfg holds the resolved configuration for this store.
	cfg *QdrantConfig

	// mu guards dimension. Recreate writes it while queries against the
	// previous collection generation may still be in flight.
	mu sync.RWMutex

	// dimension is the vector size of the current collection generation,
	// zero before the first Recreate.
	dimension int
}

// setDimension records the collection's vector size after a recreate.
func (s *Store) setDimension(d int) {
	s.mu.Lock()
	s.dimension = d
	s.mu.Unlock()
}

// checkDimension validates a vector length against the collection's size.
// A zero stored dimension means no collection has been created yet and the
// check is skipped.
func (s *Store) checkDimension(got int, what string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dimension != 0 && got != s.dimension {
		return fmt.Errorf("%w: %s has %d, collection has %d",
			ErrDimensionMismatch, what, got, s.dimension)
	}
	return nil
}

// NewStore creates a Qdrant-backed Store. The collection itself is created
// by Recreate once the embedding dimension is known.
func NewStore(cfg *QdrantConfig) (*Store, error) {
	if cfg == nil || cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant: collection name must not be empty")
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w", err)
	}

	return &Store{client: client, cfg: cfg}, nil
}

// Recreate tears down any existing collection under the configured name and
// creates a fresh one sized for the given dimension, then waits (bounded)
// for it to become ready.
func (s *Store) Recreate(ctx context.Context, dimension int) error {
	log := logging.FromContext(ctx)
	if dimension <= 0 {
		return fmt.Errorf("qdrant: invalid dimension %d", dimension)
	}

	exists, err := s.client.CollectionExists(ctx, s.cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant: failed to check collection existence: %w", err)
	}
	if exists {
		if err := s.client.DeleteCollection(ctx, s.cfg.Collection); err != nil {
			return fmt.Errorf("qdrant: failed to delete collection %q: %w", s.cfg.Collection, err)
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.cfg.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: failed to create collection %q: %w", s.cfg.Collection, err)
	}
	s.setDimension(dimension)

	if !s.awaitReady(ctx) {
		log.Warn("qdrant: collection readiness not observed within bound, proceeding",
			slog.String("collection", s.cfg.Collection),
			slog.Duration("timeout", readinessTimeout),
		)
	}
	return nil
}

// awaitReady polls the collection until it exists or the bound elapses.
func (s *Store) awaitReady(ctx context.Context) bool {
	deadline := time.Now().Add(readinessTimeout)
	for time.Now().Before(deadline) {
		exists, err := s.client.CollectionExists(ctx, s.cfg.Collection)
		if err == nil && exists {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(readinessInterval):
		}
	}
	return false
}

// Upsert pushes records and their embeddings into the collection in batches.
func (s *Store) Upsert(ctx context.Context, records []kb.Record, vectors [][]float32) error {
	if len(records) != len(vectors) {
		return fmt.Errorf("qdrant: %d records but %d vectors", len(records), len(vectors))
	}

	points := make([]*qdrant.PointStruct, 0, len(records))
	for i, rec := range records {
		if err := s.checkDimension(len(vectors[i]), fmt.Sprintf("record %q", rec.ID)); err != nil {
			return err
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(i)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"id":           rec.ID,
				"text":         rec.Text,
				"category":     rec.Category,
				"product_name": rec.ProductName,
				"price":        rec.Price,
				"discount":     rec.Discount,
				"product_url":  rec.ProductURL,
				"source":       rec.Source,
			}),
		})
	}

	for start := 0; start < len(points); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(points))
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.cfg.Collection,
			Points:         points[start:end],
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			return fmt.Errorf("qdrant: upsert batch [%d:%d] failed: %w", start, end, err)
		}
	}
	return nil
}

// Query performs a cosine similarity search and returns the top-k matches.
// Records are reconstructed from the point payload, so returned matches are
// self-contained copies detached from any knowledge-base generation.
func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if err := s.checkDimension(len(vector), "query"); err != nil {
		return nil, err
	}

	limit := uint64(topK)
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.cfg.Collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: query failed: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		rec := &kb.Record{}
		if p := r.Payload; p != nil {
			rec.ID = payloadString(p, "id")
			rec.Text = payloadString(p, "text")
			rec.Category = payloadString(p, "category")
			rec.ProductName = payloadString(p, "product_name")
			rec.Price = payloadString(p, "price")
			rec.Discount = payloadString(p, "discount")
			rec.ProductURL = payloadString(p, "product_url")
			rec.Source = payloadString(p, "source")
		}
		matches = append(matches, Match{
			ID:     rec.ID,
			Score:  r.Score,
			Record: rec,
		})
	}
	return matches, nil
}

// Ping checks connectivity to the Qdrant instance. It satisfies the
// server's readiness Pinger interface.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("unreachable: %w", err)
	}
	return nil
}

// Name returns the dependency label used in readiness responses.
func (s *Store) Name() string { return "qdrant" }

// Close closes the underlying Qdrant gRPC connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// payloadString reads one string field out of a point payload.
func payloadString(p map[string]*qdrant.Value, key string) string {
	if v, ok := p[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
