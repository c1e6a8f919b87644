package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum gap between requests to the same site.
type Limiter interface {
	Wait(ctx context.Context) error
	SetDelay(delay time.Duration)
}

// FixedDelayLimiter waits until the configured delay has elapsed since the
// last request. The delay is self-imposed cadence, not server backoff.
type FixedDelayLimiter struct {
	delay      time.Duration
	lastAction time.Time
	mu         sync.Mutex
}

func NewFixedDelayLimiter(delay time.Duration) *FixedDelayLimiter {
	return &FixedDelayLimiter{delay: delay}
}

func (l *FixedDelayLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	elapsed := time.Since(l.lastAction)
	if elapsed < l.delay {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.delay - elapsed):
		}
	}

	l.lastAction = time.Now()
	return nil
}

func (l *FixedDelayLimiter) SetDelay(delay time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.delay = delay
}
