// Package ratelimit implements the fixed-window chat throttle.
//
// A fixed window resets its counter at window boundaries, so a caller can
// send up to twice the nominal limit across a boundary (the tail of one
// window plus the head of the next). The limiter is advisory abuse
// mitigation, not a fairness guarantee.
package ratelimit

import (
	"context"
	"errors"
	"math"
	"time"
)

const (
	DefaultWindow      = 5 * time.Minute
	DefaultMaxRequests = 30
)

var ErrInvalidConfig = errors.New("ratelimit: window and max requests must be positive")

// Bucket is the counter state for one identity key.
type Bucket struct {
	Count       int
	WindowStart time.Time
}

// Store holds buckets. ConsumeAt must run its read-check-increment
// atomically with respect to other callers for the same key.
type Store interface {
	// ConsumeAt starts a fresh bucket when none exists or the current one is
	// older than window, increments it and returns the updated bucket.
	ConsumeAt(ctx context.Context, key string, now time.Time, window time.Duration) (Bucket, error)
	Reset(ctx context.Context, key string) error
}

// Result describes one rate limit decision.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	Count      int
	ResetAt    time.Time
	RetryAfter int // seconds, set when Allowed is false
}

// ResetUnix returns the window end in epoch seconds.
func (r Result) ResetUnix() int64 {
	return r.ResetAt.Unix()
}

// Config configures a Limiter.
type Config struct {
	Window      time.Duration
	MaxRequests int
}

// Limiter applies the fixed-window algorithm on top of a Store.
type Limiter struct {
	store  Store
	window time.Duration
	max    int
}

// New creates a limiter. Zero config values fall back to the defaults.
func New(store Store, cfg Config) (*Limiter, error) {
	if cfg.Window == 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = DefaultMaxRequests
	}
	if cfg.Window < 0 || cfg.MaxRequests < 0 {
		return nil, ErrInvalidConfig
	}
	if store == nil {
		store = NewMemoryStore()
	}
	return &Limiter{store: store, window: cfg.Window, max: cfg.MaxRequests}, nil
}

// Limit returns the configured max requests per window.
func (l *Limiter) Limit() int { return l.max }

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration { return l.window }

// Allow consumes one request for key at now and reports whether it fits
// into the current window.
func (l *Limiter) Allow(ctx context.Context, key string, now time.Time) (Result, error) {
	bucket, err := l.store.ConsumeAt(ctx, key, now, l.window)
	if err != nil {
		return Result{}, err
	}
	return l.decide(bucket, now), nil
}

// Reset drops the bucket for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, key)
}

func (l *Limiter) decide(b Bucket, now time.Time) Result {
	resetAt := b.WindowStart.Add(l.window)
	res := Result{
		Limit:   l.max,
		Count:   b.Count,
		ResetAt: resetAt,
	}

	if b.Count > l.max {
		res.RetryAfter = int(math.Ceil(resetAt.Sub(now).Seconds()))
		if res.RetryAfter < 0 {
			res.RetryAfter = 0
		}
		return res
	}

	res.Allowed = true
	res.Remaining = l.max - b.Count
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	return res
}
