package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Counter increments per-key hit counts inside fixed windows.
type Counter interface {
	// Incr adds one hit for key in the window containing now and returns the
	// hit count so far in that window. Windows start at now.Truncate(window).
	Incr(ctx context.Context, key string, now time.Time, window time.Duration) (int64, error)
}

// Result describes the limiter's decision for one request.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long the client should wait before the window resets,
// rounded up to whole seconds.
func (r Result) RetryAfter(now time.Time) time.Duration {
	wait := r.ResetAt.Sub(now)
	if wait <= 0 {
		return 0
	}
	return time.Duration(math.Ceil(wait.Seconds())) * time.Second
}

// Limiter allows at most Max requests per key in each window.
type Limiter struct {
	name    string
	counter Counter
	max     int
	window  time.Duration
	now     func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New creates a limiter. name namespaces its keys so that several limiters
// can share one Counter.
func New(name string, counter Counter, max int, window time.Duration, opts ...Option) (*Limiter, error) {
	if counter == nil {
		return nil, errors.New("rate limit counter cannot be nil")
	}
	if max <= 0 {
		return nil, fmt.Errorf("rate limit max must be positive, got %d", max)
	}
	if window <= 0 {
		return nil, fmt.Errorf("rate limit window must be positive, got %s", window)
	}

	l := &Limiter{
		name:    name,
		counter: counter,
		max:     max,
		window:  window,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Name returns the limiter's key namespace.
func (l *Limiter) Name() string {
	return l.name
}

// Now returns the limiter's current time.
func (l *Limiter) Now() time.Time {
	return l.now()
}

// Allow records a hit for key and reports whether it is within the limit.
// When the counter fails, the error is returned together with an allowing
// result so callers can fail open.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now()
	windowStart := now.Truncate(l.window)
	result := Result{
		Allowed:   true,
		Limit:     l.max,
		Remaining: l.max,
		ResetAt:   windowStart.Add(l.window),
	}

	count, err := l.counter.Incr(ctx, l.name+":"+key, now, l.window)
	if err != nil {
		return result, fmt.Errorf("rate limit counter %q: %w", l.name, err)
	}

	remaining := int64(l.max) - count
	if remaining < 0 {
		remaining = 0
	}
	result.Remaining = int(remaining)
	result.Allowed = count <= int64(l.max)
	return result, nil
}
