package kb

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kartwise/kartwise/internal/catalog"
	"github.com/kartwise/kartwise/internal/logging"
)

// Builder defaults.
const (
	// DefaultMaxQueries caps how many catalog queries one build issues.
	DefaultMaxQueries = 4
	// DefaultPerQuery caps how many products one query contributes.
	DefaultPerQuery = 10
	// DefaultMinRecords is the floor below which the fallback catalog is
	// merged in.
	DefaultMinRecords = 15
)

// DefaultQueries is the seed query set for live catalog fetches. Only the
// first DefaultMaxQueries are used per build.
var DefaultQueries = []string{
	"smartphones",
	"laptops",
	"mens shoes",
	"womens kurti",
	"headphones",
	"smartwatch",
	"television",
	"kitchen appliances",
}

// Searcher is the catalog dependency of the Builder.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]catalog.Product, error)
}

// BuilderConfig holds knowledge-base build settings. The zero value is not
// usable; use NewBuilder, which applies defaults.
type BuilderConfig struct {
	// Queries is the catalog query list. Defaults to DefaultQueries.
	Queries []string
	// MaxQueries caps queries per build. Defaults to DefaultMaxQueries.
	MaxQueries int
	// PerQuery caps products kept per query. Defaults to DefaultPerQuery.
	PerQuery int
	// MinRecords is the fallback threshold. Defaults to DefaultMinRecords.
	MinRecords int
}

// Builder assembles knowledge-base generations from the live catalog,
// static store information, and the fallback product set.
type Builder struct {
	searcher   Searcher
	queries    []string
	maxQueries int
	perQuery   int
	minRecords int
	// now is swapped in tests for deterministic timestamps.
	now func() time.Time
}

// NewBuilder constructs a Builder over the given catalog searcher. A nil
// searcher is allowed and produces fallback-only knowledge bases.
func NewBuilder(searcher Searcher, cfg *BuilderConfig) *Builder {
	b := &Builder{
		searcher:   searcher,
		queries:    DefaultQueries,
		maxQueries: DefaultMaxQueries,
		perQuery:   DefaultPerQuery,
		minRecords: DefaultMinRecords,
		now:        time.Now,
	}
	if cfg != nil {
		if len(cfg.Queries) > 0 {
			b.queries = cfg.Queries
		}
		if cfg.MaxQueries > 0 {
			b.maxQueries = cfg.MaxQueries
		}
		if cfg.PerQuery > 0 {
			b.perQuery = cfg.PerQuery
		}
		if cfg.MinRecords > 0 {
			b.minRecords = cfg.MinRecords
		}
	}
	return b
}

// Build assembles one complete knowledge-base generation: live catalog
// products for the first MaxQueries queries, then static store information,
// padded with the fallback catalog when the total stays under MinRecords.
// Per-query catalog failures are logged and skipped; Build itself fails only
// on context cancellation.
func (b *Builder) Build(ctx context.Context) ([]Record, error) {
	log := logging.FromContext(ctx)
	now := b.now()

	var records []Record
	if b.searcher != nil {
		queries := b.queries
		if len(queries) > b.maxQueries {
			queries = queries[:b.maxQueries]
		}
		for _, query := range queries {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("kb: build cancelled: %w", err)
			}
			products, err := b.searcher.Search(ctx, query, b.perQuery)
			if err != nil {
				log.Warn("kb: catalog query failed, skipping",
					slog.String("query", query),
					slog.Any("error", err),
				)
				continue
			}
			records = append(records, productRecords(query, products, now)...)
		}
	}
	live := len(records)

	records = append(records, StoreInfo(now)...)

	if len(records) < b.minRecords {
		log.Info("kb: thin build, merging fallback catalog",
			slog.Int("live", live),
			slog.Int("min_records", b.minRecords),
		)
		records = append(records, FallbackProducts(now)...)
	}

	log.Info("kb: build complete",
		slog.Int("live", live),
		slog.Int("total", len(records)),
	)
	return records, nil
}

// productRecords converts one query's products into records. Products
// missing a title or price are dropped.
func productRecords(query string, products []catalog.Product, now time.Time) []Record {
	idPrefix := strings.ReplaceAll(query, " ", "_")
	out := make([]Record, 0, len(products))
	for _, p := range products {
		if p.Title == "" || p.Price == "" {
			continue
		}
		out = append(out, Record{
			ID:          fmt.Sprintf("product_%s_%d", idPrefix, len(out)),
			Text:        productText(p),
			Category:    query,
			ProductName: p.Title,
			Price:       p.Price,
			Discount:    p.Discount,
			ProductURL:  p.URL,
			Source:      SourceLive,
			Timestamp:   now,
		})
	}
	return out
}

// productText composes the denormalized description a product is embedded
// and displayed as.
func productText(p catalog.Product) string {
	var sb strings.Builder
	sb.WriteString(p.Title)
	sb.WriteString(" - Price: ")
	sb.WriteString(p.Price)
	if p.OriginalPrice != "" {
		fmt.Fprintf(&sb, " (MRP: %s)", p.OriginalPrice)
	}
	if p.Discount != "" {
		sb.WriteString(" ")
		sb.WriteString(p.Discount)
	}
	sb.WriteString(".")
	if p.Rating != "" {
		fmt.Fprintf(&sb, " Rating: %s/5", p.Rating)
	}
	return sb.String()
}
