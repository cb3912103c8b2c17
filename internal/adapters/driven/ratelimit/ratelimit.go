// Package ratelimit throttles calls to remote AI providers.
//
// A Limiter combines a token bucket with a backoff window that is opened
// whenever a provider answers 429 Too Many Requests. A nil *Limiter is
// valid and never blocks, so adapters can hold one unconditionally.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/insectopedia/insectopedia/internal/logger"
)

// DefaultBackoff is used when a 429 response carries no usable Retry-After.
const DefaultBackoff = 30 * time.Second

// Limiter provides rate limiting for provider requests.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	name    string
}

// New creates a limiter allowing requestsPerSecond sustained calls with the
// given burst. A non-positive rate disables the token bucket; the 429 backoff
// still applies.
func New(name string, requestsPerSecond float64, burst int) *Limiter {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(limit, burst),
		name:    name,
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}

	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		logger.Debug("%s: backing off for %s", l.name, wait.Round(time.Millisecond))
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return l.limiter.Wait(ctx)
}

// Allow reports whether a request could be made right now without blocking.
func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return l.limiter.Allow()
}

// RecordRateLimitError opens a backoff window. A non-positive retryAfter
// selects DefaultBackoff. A shorter window never shortens an open one.
func (l *Limiter) RecordRateLimitError(retryAfter time.Duration) {
	if l == nil {
		return
	}
	if retryAfter <= 0 {
		retryAfter = DefaultBackoff
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if next := time.Now().Add(retryAfter); next.After(l.retryAt) {
		l.retryAt = next
	}
	logger.Warn("%s: rate limited, retrying after %s", l.name, retryAfter)
}

// RetryAfter parses a Retry-After header given in seconds or as an HTTP date.
// It returns zero when the header is absent or unparseable.
func RetryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		return time.Until(at)
	}
	return 0
}
