package embed

import (
	"errors"
	"math"
	"testing"
)

// fitTestEmbedder fits a TFIDF embedder over a small product corpus.
func fitTestEmbedder(t *testing.T) *TFIDF {
	t.Helper()
	e := NewTFIDF(nil)
	corpus := []string{
		"Samsung Galaxy M14 5G smartphone 6GB RAM 128GB storage",
		"HP 14s laptop Intel Core i3 8GB RAM 512GB SSD",
		"boAt Rockerz 450 bluetooth headphones bass boost",
		"Nike Revolution running shoes lightweight breathable",
	}
	if _, err := e.Fit(corpus); err != nil {
		t.Fatalf("fit: %v", err)
	}
	return e
}

func Test_TFIDF_EmptyCorpusFails(t *testing.T) {
	t.Parallel()
	e := NewTFIDF(nil)
	if _, err := e.Fit(nil); !errors.Is(err, ErrEmptyCorpus) {
		t.Errorf("want ErrEmptyCorpus, got %v", err)
	}
}

func Test_TFIDF_EmbedBeforeFitFails(t *testing.T) {
	t.Parallel()
	e := NewTFIDF(nil)
	if _, err := e.Embed("anything"); !errors.Is(err, ErrNotFitted) {
		t.Errorf("want ErrNotFitted, got %v", err)
	}
}

func Test_TFIDF_UnitNorm(t *testing.T) {
	t.Parallel()
	e := fitTestEmbedder(t)

	vec, err := e.Embed("samsung galaxy smartphone")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vec) != e.Dimension() {
		t.Fatalf("dimension: want %d, got %d", e.Dimension(), len(vec))
	}

	norm := 0.0
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if math.Abs(norm-1.0) > 1e-6 {
		t.Errorf("want unit norm, got %v", norm)
	}
}

func Test_TFIDF_ZeroVectorForUnknownTerms(t *testing.T) {
	t.Parallel()
	e := fitTestEmbedder(t)

	vec, err := e.Embed("zzz qqq xyzzy")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if !IsZero(vec) {
		t.Error("vector for out-of-vocabulary text should be zero")
	}

	known, err := e.Embed("laptop")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if IsZero(known) {
		t.Error("vector for in-vocabulary text should be non-zero")
	}
}

func Test_TFIDF_DimensionStableAcrossEmbeds(t *testing.T) {
	t.Parallel()
	e := fitTestEmbedder(t)

	for _, text := range []string{"laptop", "samsung galaxy", "unrelated words entirely"} {
		vec, err := e.Embed(text)
		if err != nil {
			t.Fatalf("embed %q: %v", text, err)
		}
		if len(vec) != e.Dimension() {
			t.Errorf("embed %q: dimension %d, want %d", text, len(vec), e.Dimension())
		}
	}
}

func Test_TFIDF_DeterministicFit(t *testing.T) {
	t.Parallel()
	corpus := []string{
		"Samsung Galaxy M14 5G smartphone",
		"HP 14s laptop Intel Core i3",
		"boAt Rockerz 450 headphones",
	}

	a := NewTFIDF(nil)
	dimA, err := a.Fit(corpus)
	if err != nil {
		t.Fatalf("fit a: %v", err)
	}
	b := NewTFIDF(nil)
	dimB, err := b.Fit(corpus)
	if err != nil {
		t.Fatalf("fit b: %v", err)
	}
	if dimA != dimB {
		t.Fatalf("dimensions differ: %d vs %d", dimA, dimB)
	}

	vecA, _ := a.Embed("samsung galaxy smartphone")
	vecB, _ := b.Embed("samsung galaxy smartphone")
	for i := range vecA {
		if vecA[i] != vecB[i] {
			t.Fatalf("vectors differ at %d: %v vs %v", i, vecA[i], vecB[i])
		}
	}
}

func Test_TFIDF_MaxFeaturesCapsDimension(t *testing.T) {
	t.Parallel()
	e := NewTFIDF(&Config{MaxFeatures: 5})
	dim, err := e.Fit([]string{
		"one two three four five six seven eight nine ten",
		"eleven twelve thirteen fourteen fifteen",
	})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if dim != 5 {
		t.Errorf("want dimension 5, got %d", dim)
	}
}

func Test_TFIDF_TrigramsInVocabulary(t *testing.T) {
	t.Parallel()
	e := NewTFIDF(nil)
	if _, err := e.Fit([]string{"samsung galaxy m14", "samsung galaxy m14"}); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if _, ok := e.vocabulary["samsung galaxy m14"]; !ok {
		t.Error("expected trigram 'samsung galaxy m14' in vocabulary")
	}
	if _, ok := e.vocabulary["samsung galaxy"]; !ok {
		t.Error("expected bigram 'samsung galaxy' in vocabulary")
	}
}

func Test_IsZero(t *testing.T) {
	t.Parallel()
	if !IsZero(make([]float32, 10)) {
		t.Error("all-zero vector should be zero")
	}
	if IsZero([]float32{0, 0.5, 0}) {
		t.Error("non-zero vector should not be zero")
	}
}
