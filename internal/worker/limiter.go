package worker

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter throttles source reads per scope. A scope is the first segment of
// a repository path, so a huge vendored tree cannot starve the rest.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter. A non-positive rate means unlimited.
func NewLimiter(readsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}
	limit := rate.Limit(readsPerSecond)
	if readsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// Wait waits for read clearance for the given repository path
func (l *Limiter) Wait(ctx context.Context, path string) error {
	return l.getLimiter(Scope(path)).Wait(ctx)
}

func (l *Limiter) getLimiter(scope string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[scope]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[scope]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[scope] = limiter

	return limiter
}

// SetScopeRate sets a custom rate limit for one scope
func (l *Limiter) SetScopeRate(scope string, readsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[scope] = rate.NewLimiter(rate.Limit(readsPerSecond), burst)
}

// Scope returns the top-level directory of a slash-separated path, or "."
// for files at the root
func Scope(path string) string {
	path = strings.TrimPrefix(strings.TrimPrefix(path, "./"), "/")
	if i := strings.IndexByte(path, '/'); i > 0 {
		return path[:i]
	}
	return "."
}
