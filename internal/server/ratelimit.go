package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/kartwise/kartwise/internal/logging"
)

// Rate-limit tuning. Every limited request runs a full retrieval (query
// embedding plus a Qdrant round trip), so the sustained rate is kept well
// below what the handler chain could technically serve. A burst of 10
// covers a user pasting a few questions in quick succession; 5/s sustained
// is still far above human chat pace.
const (
	defaultRateLimit = 5
	defaultRateBurst = 10
)

// Clients that go quiet are forgotten to bound the tracker map. Chat
// sessions are conversational, so anything silent for several minutes is
// treated as gone.
const (
	clientSweepInterval = time.Minute
	clientIdleTimeout   = 5 * time.Minute
)

// client is the per-IP token bucket plus the last time the IP was seen.
type client struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// rateLimiter enforces a per-IP token-bucket limit on the chat and refresh
// endpoints. A background sweeper drops idle clients.
type rateLimiter struct {
	// mu protects clients.
	mu      sync.Mutex
	clients map[string]*client

	// rps and burst are the per-IP token-bucket parameters.
	rps   rate.Limit
	burst int

	log *slog.Logger
}

// newRateLimiter constructs a rateLimiter and starts the sweeper goroutine.
// The goroutine exits when the returned stop function is called.
func newRateLimiter(rps float64, burst int, log *slog.Logger) (*rateLimiter, func()) {
	rl := &rateLimiter{
		clients: make(map[string]*client),
		rps:     rate.Limit(rps),
		burst:   burst,
		log:     log,
	}

	stopCh := make(chan struct{})
	go rl.sweepLoop(stopCh)

	return rl, func() { close(stopCh) }
}

// bucketFor returns the token bucket for ip, creating it on first sight.
func (rl *rateLimiter) bucketFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[ip]
	if !ok {
		c = &client{bucket: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = time.Now()
	return c.bucket
}

// sweepLoop periodically drops idle clients until stopCh is closed.
func (rl *rateLimiter) sweepLoop(stopCh <-chan struct{}) {
	ticker := time.NewTicker(clientSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// sweep removes clients idle longer than clientIdleTimeout.
func (rl *rateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-clientIdleTimeout)
	for ip, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// middleware returns an http.Handler that enforces the rate limit before
// delegating to next. Requests over the limit receive 429 Too Many Requests
// with a Retry-After header and a structured WARN log entry.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		if !rl.bucketFor(ip).Allow() {
			log := logging.FromContext(r.Context())
			log.Warn("rate limit exceeded",
				slog.String("ip", ip),
				slog.String("path", r.URL.Path),
			)
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the remote IP from the request, stripping the port.
// It does not trust X-Forwarded-For since this server is local-only.
func clientIP(r *http.Request) string {
	addr := r.RemoteAddr
	// RemoteAddr is "host:port" for TCP connections.
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}
