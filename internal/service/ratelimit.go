package service

import (
	"context"
	"fmt"
	"time"

	"github.com/stockpeek/edge-gateway/internal/models"
	"github.com/stockpeek/edge-gateway/internal/storage"
)

// RateLimitError carries the retry hint surfaced to the caller.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many login attempts, retry after %s", e.RetryAfter.Round(time.Second))
}

// LoginRateLimiter counts failed logins per caller identity inside a
// sliding window. A small race letting an extra attempt through at the
// window boundary is acceptable, so reads and writes are not fenced
// against each other.
type LoginRateLimiter struct {
	attempts storage.AttemptRepository
	limit    int
	window   time.Duration
	now      func() time.Time
}

func NewLoginRateLimiter(attempts storage.AttemptRepository, limit int, window time.Duration) *LoginRateLimiter {
	return &LoginRateLimiter{
		attempts: attempts,
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Allow reports whether identity may attempt a login now; when it may
// not, the returned duration is the remaining window.
func (rl *LoginRateLimiter) Allow(ctx context.Context, identity string) (time.Duration, bool) {
	rec, err := rl.attempts.Get(ctx, identity)
	if err != nil || rec == nil {
		// Fail open: a broken attempt store must not lock out logins.
		return 0, true
	}

	now := rl.now()
	if now.Sub(rec.WindowStart) > rl.window {
		return 0, true
	}
	if rec.Count >= rl.limit {
		return rec.WindowStart.Add(rl.window).Sub(now), false
	}
	return 0, true
}

// RecordFailure increments the identity's counter, starting a new
// window when none is active.
func (rl *LoginRateLimiter) RecordFailure(ctx context.Context, identity string) {
	now := rl.now()

	rec, err := rl.attempts.Get(ctx, identity)
	if err != nil || rec == nil || now.Sub(rec.WindowStart) > rl.window {
		_ = rl.attempts.Put(ctx, identity, models.LoginAttempt{Count: 1, WindowStart: now})
		return
	}

	rec.Count++
	_ = rl.attempts.Put(ctx, identity, *rec)
}

func (rl *LoginRateLimiter) Reset(ctx context.Context, identity string) {
	_ = rl.attempts.Delete(ctx, identity)
}
