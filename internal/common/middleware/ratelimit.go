package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimiter is the limiter interface.
type RateLimiter interface {
	Allow(ctx context.Context) bool
}

// TokenBucket is a token bucket limiter.
type TokenBucket struct {
	capacity   int64
	tokens     int64
	refillRate int64 // tokens added per second
	lastRefill time.Time
	mu         sync.Mutex
}

func NewTokenBucket(capacity, refillRate int64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow reports whether a request may proceed.
func (tb *TokenBucket) Allow(ctx context.Context) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()

	tokensToAdd := int64(elapsed * float64(tb.refillRate))
	if tokensToAdd > 0 {
		tb.tokens = minInt64(tb.tokens+tokensToAdd, tb.capacity)
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	return false
}

// SlidingWindow is a sliding window limiter.
type SlidingWindow struct {
	requests    []time.Time
	window      time.Duration
	maxRequests int
	mu          sync.Mutex
}

func NewSlidingWindow(window time.Duration, maxRequests int) *SlidingWindow {
	return &SlidingWindow{
		requests:    make([]time.Time, 0),
		window:      window,
		maxRequests: maxRequests,
	}
}

// Allow reports whether a request may proceed.
func (sw *SlidingWindow) Allow(ctx context.Context) bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-sw.window)

	validRequests := make([]time.Time, 0)
	for _, reqTime := range sw.requests {
		if reqTime.After(windowStart) {
			validRequests = append(validRequests, reqTime)
		}
	}
	sw.requests = validRequests

	if len(sw.requests) < sw.maxRequests {
		sw.requests = append(sw.requests, now)
		return true
	}

	return false
}

// PerClient keys limiters by client address so one noisy caller cannot
// exhaust the budget of everyone else. Limiters are created lazily, one per
// address, with the factory given to NewPerClient.
type PerClient struct {
	mu         sync.Mutex
	limiters   map[string]RateLimiter
	newLimiter func() RateLimiter
}

func NewPerClient(newLimiter func() RateLimiter) *PerClient {
	return &PerClient{
		limiters:   make(map[string]RateLimiter),
		newLimiter: newLimiter,
	}
}

// Allow reports whether the given client may proceed.
func (pc *PerClient) Allow(ctx context.Context, client string) bool {
	pc.mu.Lock()
	l, ok := pc.limiters[client]
	if !ok {
		l = pc.newLimiter()
		pc.limiters[client] = l
	}
	pc.mu.Unlock()
	return l.Allow(ctx)
}

// ClientKey is the limiter key for a request: the remote IP without the
// ephemeral port.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit wraps an http.Handler; requests over the client's limit get 429.
// A nil dispenser passes everything through.
func RateLimit(pc *PerClient, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if pc != nil && !pc.Allow(r.Context(), ClientKey(r)) {
			http.Error(w, `{"error":"too many requests"}`, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
