// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/promptelo/promptelo/pkg/metrics"
)

// staleAfter is how long an idle client entry survives before eviction.
const staleAfter = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter enforces a per-client token bucket keyed by IP.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	count   int
	span    time.Duration
}

func newRateLimiter(count int, span time.Duration) *rateLimiter {
	return &rateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(float64(count) / span.Seconds()),
		burst:   count,
		count:   count,
		span:    span,
	}
}

func (rl *rateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	c, ok := rl.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now

	// Opportunistic eviction keeps the map from growing with one-shot clients.
	if len(rl.clients) > rl.burst*4 {
		for k, v := range rl.clients {
			if now.Sub(v.lastSeen) > staleAfter {
				delete(rl.clients, k)
			}
		}
	}
	return c.limiter
}

// Middleware rejects requests over the per-client budget with 429 and the
// conventional X-RateLimit headers.
func (rl *rateLimiter) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lim := rl.get(clientKey(r))

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.count))
		if !lim.Allow() {
			delay := lim.Reserve()
			wait := delay.Delay()
			delay.Cancel()

			retryAfter := int(math.Ceil(wait.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			metrics.RecordRateLimited()
			writeError(w, http.StatusTooManyRequests, "rate_limited", ErrRateLimited)
			return
		}

		remaining := int(lim.Tokens())
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		next.ServeHTTP(w, r)
	}
}

// clientKey extracts the caller identity, trusting the first hop of
// X-Forwarded-For when present.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
