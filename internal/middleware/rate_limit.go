package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/baharkarakas/tradebinder/internal/api/httpx"
)

type tokenBucket struct {
	tokens float64
	last   time.Time
}

// Limiter is a token bucket per client IP. Buckets idle for a minute are dropped.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	rate    float64
	burst   float64
	now     func() time.Time
	swept   time.Time
}

func NewLimiter(rps int) *Limiter {
	return &Limiter{
		buckets: map[string]*tokenBucket{},
		rate:    float64(rps),
		burst:   float64(rps),
		now:     time.Now,
	}
}

const bucketIdle = time.Minute

// Allow takes one token from key's bucket.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()

	if now.Sub(l.swept) > bucketIdle {
		for k, b := range l.buckets {
			if now.Sub(b.last) > bucketIdle {
				delete(l.buckets, k)
			}
		}
		l.swept = now
	}

	tb, ok := l.buckets[key]
	if !ok {
		tb = &tokenBucket{tokens: l.burst, last: now}
		l.buckets[key] = tb
	}
	if elapsed := now.Sub(tb.last).Seconds(); elapsed > 0 {
		tb.tokens = min(l.burst, tb.tokens+elapsed*l.rate)
		tb.last = now
	}
	if tb.tokens < 1 {
		return false
	}
	tb.tokens--
	return true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit answers 429 once a client exceeds rps requests per second.
func RateLimit(rps int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	l := NewLimiter(rps)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(clientIP(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(1))
				httpx.WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
