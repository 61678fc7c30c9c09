package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter decides whether a request identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// SlidingWindowLimiter allows at most limit requests per key within windowSize.
// Keys with no request inside the window are dropped once per window.
type SlidingWindowLimiter struct {
	mu         sync.Mutex
	windows    map[string][]time.Time
	limit      int
	windowSize time.Duration
	now        func() time.Time
	lastSweep  time.Time
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter
func NewSlidingWindowLimiter(limit int, windowSize time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		windows:    make(map[string][]time.Time),
		limit:      limit,
		windowSize: windowSize,
		now:        time.Now,
	}
}

// Allow checks if a request is allowed
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-l.windowSize)
	if now.Sub(l.lastSweep) >= l.windowSize {
		l.sweep(windowStart)
		l.lastSweep = now
	}

	requests := l.windows[key]
	kept := requests[:0]
	for _, at := range requests {
		if at.After(windowStart) {
			kept = append(kept, at)
		}
	}

	if len(kept) >= l.limit {
		l.windows[key] = kept
		return false, nil
	}
	l.windows[key] = append(kept, now)
	return true, nil
}

// sweep drops every key whose newest request is outside the window.
func (l *SlidingWindowLimiter) sweep(windowStart time.Time) {
	for key, requests := range l.windows {
		if len(requests) == 0 || !requests[len(requests)-1].After(windowStart) {
			delete(l.windows, key)
		}
	}
}

// Len returns the number of keys being tracked.
func (l *SlidingWindowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Reset forgets all requests recorded for key.
func (l *SlidingWindowLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// NewIPRateLimiter creates a per-IP limiter with a one minute window.
func NewIPRateLimiter(requestsPerMinute int) RateLimiter {
	return prefixed{"ip:", NewSlidingWindowLimiter(requestsPerMinute, time.Minute)}
}

// NewUserRateLimiter creates a per-user limiter with a one minute window.
func NewUserRateLimiter(requestsPerMinute int) RateLimiter {
	return prefixed{"user:", NewSlidingWindowLimiter(requestsPerMinute, time.Minute)}
}

type prefixed struct {
	prefix  string
	limiter RateLimiter
}

func (p prefixed) Allow(ctx context.Context, key string) (bool, error) {
	return p.limiter.Allow(ctx, p.prefix+key)
}
