// Package embed implements the lexical TF-IDF embedder used to vectorize
// knowledge-base records and queries. The embedder is fitted once per
// knowledge-base generation; the fitted vocabulary fixes the embedding
// dimension for that generation.
package embed

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// DefaultMaxFeatures caps the fitted vocabulary size when no override is
// configured. The resulting vector dimension is min(MaxFeatures, distinct terms).
const DefaultMaxFeatures = 384

// zeroEpsilon is the threshold below which a vector's L1 mass is treated as
// zero. A zero query vector means the text shares no vocabulary terms with
// the fitted corpus.
const zeroEpsilon = 1e-10

// maxNGram is the longest term length in tokens: unigrams through trigrams.
const maxNGram = 3

// ErrEmptyCorpus is returned by Fit when the corpus contains no documents or
// no usable terms. Without a corpus the embedding dimension cannot be
// determined, so no knowledge base can be built.
var ErrEmptyCorpus = errors.New("embed: empty corpus, cannot fit vocabulary")

// ErrNotFitted is returned by Embed before a successful Fit.
var ErrNotFitted = errors.New("embed: embedder not fitted")

// tokenPattern matches lowercase word tokens. Digits are kept so model
// numbers ("m14", "5g") and prices remain searchable.
var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Config holds TF-IDF embedder settings.
type Config struct {
	// MaxFeatures caps the vocabulary size. Defaults to DefaultMaxFeatures.
	MaxFeatures int
}

// TFIDF is a fixed-vocabulary sparse text vectorizer. Fit builds the
// vocabulary and IDF table from a corpus; Embed produces L2-normalized
// vectors with sublinear term-frequency scaling.
//
// A TFIDF value is immutable after Fit and safe for concurrent Embed calls.
type TFIDF struct {
	// maxFeatures caps the vocabulary size.
	maxFeatures int
	// vocabulary maps a term to its vector index.
	vocabulary map[string]int
	// idf holds the smoothed inverse document frequency per vector index.
	idf []float64
	// dimension is the fitted vector length.
	dimension int
	// fitted is true after a successful Fit.
	fitted bool
}

// NewTFIDF constructs an unfitted TFIDF embedder.
func NewTFIDF(cfg *Config) *TFIDF {
	if cfg == nil {
		cfg = &Config{}
	}
	maxFeatures := cfg.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	return &TFIDF{maxFeatures: maxFeatures}
}

// Fit builds the vocabulary and IDF table from the corpus and returns the
// resulting embedding dimension. The vocabulary keeps the most frequent
// terms (unigrams through trigrams, stop-words excluded) up to MaxFeatures,
// ordered deterministically so identical corpora always produce identical
// fits.
func (e *TFIDF) Fit(corpus []string) (int, error) {
	if len(corpus) == 0 {
		return 0, ErrEmptyCorpus
	}

	// Corpus-wide term counts select the vocabulary; per-document presence
	// counts drive the IDF.
	counts := make(map[string]int)
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, term := range terms(text) {
			counts[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				df[term]++
			}
		}
	}
	if len(counts) == 0 {
		return 0, ErrEmptyCorpus
	}

	selected := make([]string, 0, len(counts))
	for term := range counts {
		selected = append(selected, term)
	}
	// Most frequent first; alphabetical tie-break keeps the fit deterministic.
	sort.Slice(selected, func(i, j int) bool {
		if counts[selected[i]] != counts[selected[j]] {
			return counts[selected[i]] > counts[selected[j]]
		}
		return selected[i] < selected[j]
	})
	if len(selected) > e.maxFeatures {
		selected = selected[:e.maxFeatures]
	}
	sort.Strings(selected)

	e.vocabulary = make(map[string]int, len(selected))
	e.idf = make([]float64, len(selected))
	n := float64(len(corpus))
	for i, term := range selected {
		e.vocabulary[term] = i
		// Smoothed IDF, never zero, so every vocabulary term contributes.
		e.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	e.dimension = len(selected)
	e.fitted = true
	return e.dimension, nil
}

// Dimension returns the fitted vector length, or 0 before Fit.
func (e *TFIDF) Dimension() int { return e.dimension }

// Embed converts text into an L2-normalized TF-IDF vector of the fitted
// dimension. Text sharing no vocabulary terms with the corpus embeds to the
// all-zero vector; callers detect that case with IsZero.
func (e *TFIDF) Embed(text string) ([]float32, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}

	tf := make(map[int]int)
	for _, term := range terms(text) {
		if idx, ok := e.vocabulary[term]; ok {
			tf[idx]++
		}
	}

	vec := make([]float32, e.dimension)
	if len(tf) == 0 {
		return vec, nil
	}

	norm := 0.0
	weights := make(map[int]float64, len(tf))
	for idx, count := range tf {
		// Sublinear TF scaling: repeated terms gain diminishing weight.
		w := (1 + math.Log(float64(count))) * e.idf[idx]
		weights[idx] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for idx, w := range weights {
		vec[idx] = float32(w / norm)
	}
	return vec, nil
}

// IsZero reports whether vec carries no directional information (L1 mass
// below a small epsilon). Cosine similarity against a zero vector is
// undefined, so callers must skip vector search for zero embeddings.
func IsZero(vec []float32) bool {
	sum := 0.0
	for _, v := range vec {
		sum += math.Abs(float64(v))
	}
	return sum < zeroEpsilon
}

// terms tokenizes text into stop-word-filtered unigrams through trigrams.
func terms(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, t := range raw {
		if _, stop := stopwords[t]; stop {
			continue
		}
		tokens = append(tokens, t)
	}

	out := make([]string, 0, len(tokens)*maxNGram)
	for n := 1; n <= maxNGram; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

// stopwords is the default English stop-word set excluded from the vocabulary.
var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "this", "that", "these",
		"those", "from", "up", "down", "over", "under", "again", "further",
		"than", "so", "such", "into", "about", "between", "through",
		"during", "before", "after", "above", "below", "out", "off", "own",
		"same", "too", "very", "can", "will", "just", "should", "now",
		"what", "which", "who", "whom", "i", "me", "my", "we", "our", "you",
		"your", "he", "him", "his", "she", "her", "they", "them", "their",
		"do", "does", "did", "have", "has", "had", "not", "no",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
