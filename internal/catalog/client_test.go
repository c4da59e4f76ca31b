package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestClient constructs a Client pointed at a test server.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(&Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func Test_Client_SearchDecodesProducts(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[
			{"title":"Samsung Galaxy M14 5G","price":"₹12,990","mrp":"₹16,990","discount":"23% off","rating":4.3,"url":"https://shop.example/p/1"},
			{"name":"Redmi 12 5G","salePrice":10999,"link":"https://shop.example/p/2"}
		]}`))
	})

	products, err := c.Search(context.Background(), "smartphones", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("want 2 products, got %d", len(products))
	}
	if products[0].Title != "Samsung Galaxy M14 5G" || products[0].Price != "₹12,990" {
		t.Errorf("product[0]: got %+v", products[0])
	}
	if products[0].Rating != "4.3" {
		t.Errorf("product[0].Rating: want 4.3, got %q", products[0].Rating)
	}
	// Alternate field names and numeric prices must be tolerated.
	if products[1].Title != "Redmi 12 5G" || products[1].Price != "10999" {
		t.Errorf("product[1]: got %+v", products[1])
	}
	if products[1].URL != "https://shop.example/p/2" {
		t.Errorf("product[1].URL: got %q", products[1].URL)
	}
}

func Test_Client_SearchRespectsMaxResults(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products":[
			{"title":"a","price":"1"},{"title":"b","price":"2"},{"title":"c","price":"3"}
		]}`))
	})

	products, err := c.Search(context.Background(), "anything", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(products) != 2 {
		t.Errorf("want 2 products, got %d", len(products))
	}
}

func Test_Client_MalformedResponseDegradesToEmpty(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>definitely not json</html>`))
	})

	products, err := c.Search(context.Background(), "smartphones", 10)
	if err != nil {
		t.Fatalf("malformed body must not error: %v", err)
	}
	if len(products) != 0 {
		t.Errorf("want empty result, got %d products", len(products))
	}
}

func Test_Client_ErrorStatusDegradesToEmpty(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	products, err := c.Search(context.Background(), "smartphones", 10)
	if err != nil {
		t.Fatalf("error status must not error: %v", err)
	}
	if len(products) != 0 {
		t.Errorf("want empty result, got %d products", len(products))
	}
}

func Test_Client_TransportErrorSurfaces(t *testing.T) {
	t.Parallel()
	c, err := NewClient(&Config{BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := c.Search(context.Background(), "smartphones", 10); err == nil {
		t.Error("expected transport error")
	}
}

func Test_Client_Ping(t *testing.T) {
	t.Parallel()
	ok := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if err := ok.Ping(context.Background()); err != nil {
		t.Errorf("ping healthy: %v", err)
	}

	down := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	if err := down.Ping(context.Background()); err == nil {
		t.Error("ping against 502 should fail")
	}
}

func Test_Client_RequiresBaseURL(t *testing.T) {
	t.Parallel()
	if _, err := NewClient(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewClient(&Config{}); err == nil {
		t.Error("expected error for empty base URL")
	}
}
