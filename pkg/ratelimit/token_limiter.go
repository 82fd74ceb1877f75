package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenLimiter enforces a per-minute token budget. Consumers call Wait with the
// token cost of the next request; the call blocks until the budget allows it.
type TokenLimiter struct {
	mu           sync.Mutex
	maxPerMinute int
	remaining    int
	windowStart  time.Time
}

// NewTokenLimiter creates a limiter with the given per-minute budget.
func NewTokenLimiter(maxPerMinute int) *TokenLimiter {
	return &TokenLimiter{
		maxPerMinute: maxPerMinute,
		remaining:    maxPerMinute,
		windowStart:  time.Now(),
	}
}

// GetRemaining returns the tokens left in the current window.
func (l *TokenLimiter) GetRemaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refill()
	return l.remaining
}

// Wait blocks until n tokens are available or the context is canceled. A cost
// larger than the whole budget is allowed through once the window resets.
func (l *TokenLimiter) Wait(ctx context.Context, n int) error {
	for {
		l.mu.Lock()
		l.refill()
		if l.remaining >= n || n > l.maxPerMinute {
			l.remaining -= n
			if l.remaining < 0 {
				l.remaining = 0
			}
			l.mu.Unlock()
			return nil
		}
		wait := time.Minute - time.Since(l.windowStart)
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (l *TokenLimiter) refill() {
	if time.Since(l.windowStart) >= time.Minute {
		l.remaining = l.maxPerMinute
		l.windowStart = time.Now()
	}
}
