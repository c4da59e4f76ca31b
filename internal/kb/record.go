// Package kb assembles the in-memory knowledge base the retrieval engine
// searches over. A knowledge base is built once at startup from the live
// catalog, merged with static store information, and padded from the
// fallback catalog when the live fetch comes back thin. Records are
// append-only within a generation; a refresh builds a complete replacement.
package kb

import "time"

// Provenance tags for Record.Source.
const (
	// SourceLive marks records fetched from the catalog API.
	SourceLive = "live"
	// SourceStatic marks store policy and information records.
	SourceStatic = "static"
	// SourceFallback marks records from the built-in fallback catalog.
	SourceFallback = "fallback"
)

// Record is one knowledge-base entry. ID is unique within a generation and
// Text is never empty; both are enforced by the Builder.
type Record struct {
	// ID uniquely identifies the record within one knowledge-base generation.
	ID string
	// Text is the denormalized description used for embedding and display.
	Text string
	// Category is the coarse classification label used for keyword boosting.
	Category string
	// ProductName is the bare product title, empty for info records.
	ProductName string
	// Price is the display price (currency-prefixed, comma-grouped), empty
	// for info records.
	Price string
	// Discount is the display discount, if any.
	Discount string
	// ProductURL is the product page link, if any.
	ProductURL string
	// Source is the provenance tag (SourceLive, SourceStatic, SourceFallback).
	Source string
	// Timestamp is when the record was created.
	Timestamp time.Time
}

// Texts returns the record texts in insertion order, the corpus the lexical
// embedder is fitted on.
func Texts(records []Record) []string {
	out := make([]string, len(records))
	for i := range records {
		out[i] = records[i].Text
	}
	return out
}
