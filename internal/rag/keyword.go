package rag

import (
	"sort"
	"strings"

	"github.com/kartwise/kartwise/internal/kb"
)

// Keyword boost defaults. The magnitudes are heuristic and tunable through
// Boosts; retrieval behavior depends on their relative weight, not their
// absolute values.
const (
	DefaultCategoryBoost    = 3
	DefaultProductNameBoost = 4
	DefaultSynonymBoost     = 2
)

// synonymClusters are domain synonym sets. A query word from a cluster
// matching a record category that carries another term of the same cluster
// earns the synonym boost.
var synonymClusters = [][]string{
	{"phone", "phones", "smartphone", "smartphones", "mobile", "mobiles"},
	{"laptop", "laptops", "notebook", "computer"},
	{"shoe", "shoes", "footwear", "sneakers"},
	{"dress", "kurti", "kurta", "clothing"},
	{"watch", "watches", "smartwatch"},
	{"headphone", "headphones", "earphones", "earbuds", "audio"},
	{"tablet", "tablets", "ipad"},
	{"tv", "television"},
}

// Boosts holds the keyword scoring boost magnitudes.
type Boosts struct {
	// Category is added once when a query word and the record category
	// overlap as substrings.
	Category int
	// ProductName is added per query word (length > 2) found inside the
	// product name.
	ProductName int
	// Synonym is added once when a query word's synonym cluster crosses the
	// record category.
	Synonym int
}

// DefaultBoosts returns the standard boost magnitudes.
func DefaultBoosts() Boosts {
	return Boosts{
		Category:    DefaultCategoryBoost,
		ProductName: DefaultProductNameBoost,
		Synonym:     DefaultSynonymBoost,
	}
}

// Matcher scores knowledge-base records against a query by lexical overlap
// plus domain boosts. It holds no mutable state and is safe for concurrent
// use over one knowledge-base generation.
type Matcher struct {
	records []kb.Record
	boosts  Boosts
}

// NewMatcher constructs a Matcher over one generation's records. The slice
// is referenced, not copied; callers must not mutate it afterwards.
func NewMatcher(records []kb.Record, boosts *Boosts) *Matcher {
	m := &Matcher{records: records, boosts: DefaultBoosts()}
	if boosts != nil {
		m.boosts = *boosts
	}
	return m
}

// Search returns up to topK records ranked by keyword relevance. maxPrice=0
// means no price constraint. The price filter is lenient: records whose
// price has no parseable numeral pass the filter; records with a parsed
// price above maxPrice are excluded.
func (m *Matcher) Search(query string, topK, maxPrice int) []Match {
	words := queryWords(query)
	if len(words) == 0 {
		return nil
	}
	denom := float32(len(words))

	var matches []Match
	for i := range m.records {
		rec := &m.records[i]

		if maxPrice > 0 {
			if price, ok := ParsePrice(rec.Price); ok && price > maxPrice {
				continue
			}
		}

		score := m.score(words, rec)
		if score == 0 {
			continue
		}
		matches = append(matches, Match{
			ID:     rec.ID,
			Score:  float32(score) / denom,
			Record: rec,
		})
	}

	// Stable sort keeps knowledge-base insertion order for ties.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// score computes lexical overlap plus boosts for one record.
func (m *Matcher) score(words []string, rec *kb.Record) int {
	text := strings.ToLower(rec.Text)
	textWords := make(map[string]bool)
	for _, w := range strings.Fields(text) {
		textWords[w] = true
	}
	category := strings.ToLower(rec.Category)
	name := strings.ToLower(rec.ProductName)

	score := 0
	categoryBoosted := false
	synonymBoosted := false
	for _, w := range words {
		if textWords[w] {
			score++
		}
		if !categoryBoosted && category != "" &&
			(strings.Contains(category, w) || strings.Contains(w, category)) {
			score += m.boosts.Category
			categoryBoosted = true
		}
		if len(w) > 2 && name != "" && strings.Contains(name, w) {
			score += m.boosts.ProductName
		}
		if !synonymBoosted && m.synonymHit(w, category) {
			score += m.boosts.Synonym
			synonymBoosted = true
		}
	}
	return score
}

// synonymHit reports whether word belongs to a synonym cluster that crosses
// the record category through a different term.
func (m *Matcher) synonymHit(word, category string) bool {
	if category == "" {
		return false
	}
	for _, cluster := range synonymClusters {
		inCluster := false
		for _, term := range cluster {
			if term == word {
				inCluster = true
				break
			}
		}
		if !inCluster {
			continue
		}
		for _, term := range cluster {
			if term != word && strings.Contains(category, term) {
				return true
			}
		}
	}
	return false
}

// queryWords lowercases and whitespace-splits the query, dropping duplicate
// words so repeated terms do not inflate the overlap count.
func queryWords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	seen := make(map[string]bool, len(fields))
	words := make([]string, 0, len(fields))
	for _, w := range fields {
		if seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return words
}
