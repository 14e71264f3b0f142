package common

import (
	"errors"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const clientBucketTTL = 5 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client address.
type RateLimiter struct {
	perSecond rate.Limit
	burst     int

	mu        sync.Mutex
	buckets   map[string]*clientBucket
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter creates a limiter allowing perSecond requests with the given
// burst per client.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		perSecond: rate.Limit(perSecond),
		burst:     burst,
		buckets:   make(map[string]*clientBucket),
		now:       time.Now,
	}
}

// Allow reports whether the client may issue another request now.
func (l *RateLimiter) Allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > clientBucketTTL {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > clientBucketTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[client]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(l.perSecond, l.burst)}
		l.buckets[client] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Middleware rejects requests over the limit with 429.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientAddress(r)) {
			log.Printf("❌ rate limit exceeded for %s", clientAddress(r))
			w.Header().Set("Retry-After", "1")
			resp := NewErrorResponse(errors.New("rate limit exceeded"), http.StatusTooManyRequests, "Gateway", "RateLimit", "Rejected")
			w.Header().Set("Content-Type", "application/json; charset=UTF-8")
			w.WriteHeader(resp.Code)
			if body, err := Marshal(resp.Body); err == nil {
				_, _ = w.Write(body)
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimitMiddleware returns a pass-through handler when perSecond <= 0.
func RateLimitMiddleware(perSecond float64, burst int) func(http.Handler) http.Handler {
	if perSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return NewRateLimiter(perSecond, burst).Middleware
}

func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
