// Package catalog implements the client for the upstream product catalog
// search API. The catalog is an external collaborator: it supplies raw
// product records at knowledge-base build time and is never consulted on
// the query path.
//
// The API is unofficial and its responses vary, so decoding is deliberately
// tolerant: missing fields default to empty strings and malformed responses
// degrade to an empty product list rather than an error the caller must
// handle.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/kartwise/kartwise/internal/logging"
)

// DefaultTimeout bounds each catalog search call so one slow upstream
// request cannot stall a knowledge-base build.
const DefaultTimeout = 15 * time.Second

// defaultUserAgents is rotated across requests. The upstream serves browser
// traffic and rejects obvious bot agents.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
}

// Product is one raw catalog listing. Only Title and Price are required by
// downstream consumers; all other fields may be empty.
type Product struct {
	// Title is the product display name.
	Title string
	// Price is the current selling price as displayed (currency-prefixed,
	// comma-grouped, e.g. "₹12,990").
	Price string
	// OriginalPrice is the pre-discount MRP, if published.
	OriginalPrice string
	// Discount is the display discount (e.g. "23% off").
	Discount string
	// Rating is the display rating (e.g. "4.3").
	Rating string
	// URL is the product page link.
	URL string
}

// Config holds catalog client settings.
type Config struct {
	// BaseURL is the search API base (e.g. "https://shop.example.com/api").
	BaseURL string
	// Timeout bounds each search request. Defaults to DefaultTimeout.
	Timeout time.Duration
	// UserAgents overrides the rotated User-Agent pool.
	UserAgents []string
}

// Client is an HTTP client for the catalog search API.
// It is safe for concurrent use.
type Client struct {
	// baseURL is the resolved API base without a trailing slash.
	baseURL string
	// httpClient enforces the per-request timeout.
	httpClient *http.Client
	// userAgents is the rotated User-Agent pool.
	userAgents []string
	// counter drives User-Agent rotation.
	counter atomic.Uint64
}

// NewClient constructs a catalog Client from cfg.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, fmt.Errorf("catalog: base URL must not be empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	agents := cfg.UserAgents
	if len(agents) == 0 {
		agents = defaultUserAgents
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		userAgents: agents,
	}, nil
}

// searchResponse is the expected (but not guaranteed) response shape.
// Fields inside each product are decoded as loose values because the
// upstream sometimes returns numbers where strings are expected.
type searchResponse struct {
	Products []map[string]any `json:"products"`
}

// Search queries the catalog for up to maxResults products. Transport
// failures return an error; malformed or unexpected response bodies return
// an empty slice with no error, per the degrade-to-empty contract.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Product, error) {
	log := logging.FromContext(ctx)

	endpoint := fmt.Sprintf("%s/search/%s/0/20", c.baseURL, url.PathEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.nextUserAgent())
	req.Header.Set("Accept", "application/json, text/javascript, */*")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: search %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("catalog: unexpected status, treating as empty",
			slog.String("query", query),
			slog.Int("status", resp.StatusCode),
		)
		return nil, nil
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Warn("catalog: malformed response, treating as empty",
			slog.String("query", query),
			slog.Any("error", err),
		)
		return nil, nil
	}

	products := make([]Product, 0, len(body.Products))
	for _, item := range body.Products {
		if len(products) >= maxResults {
			break
		}
		products = append(products, Product{
			Title:         firstString(item, "title", "name"),
			Price:         firstString(item, "price", "salePrice"),
			OriginalPrice: firstString(item, "mrp"),
			Discount:      firstString(item, "discount"),
			Rating:        firstString(item, "rating"),
			URL:           firstString(item, "url", "link"),
		})
	}
	return products, nil
}

// Ping probes the catalog API base for reachability. It satisfies the
// server's readiness Pinger interface.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.nextUserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("upstream error: %s", resp.Status)
	}
	return nil
}

// Name returns the dependency label used in readiness responses.
func (c *Client) Name() string { return "catalog" }

// nextUserAgent rotates through the configured User-Agent pool.
func (c *Client) nextUserAgent() string {
	n := c.counter.Add(1)
	return c.userAgents[int(n)%len(c.userAgents)]
}

// firstString returns the first of the named keys present in item, coerced
// to a string. Numbers are formatted without an exponent so prices survive.
func firstString(item map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := item[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			if v == float64(int64(v)) {
				return fmt.Sprintf("%d", int64(v))
			}
			return fmt.Sprintf("%g", v)
		}
	}
	return ""
}
