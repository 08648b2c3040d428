package spotify

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a sliding-window limiter: at most maxRequests calls may
// start within any window.
type RateLimiter struct {
	mu          sync.Mutex
	starts      []time.Time
	maxRequests int
	window      time.Duration
	enabled     bool
}

// NewRateLimiter creates a limiter for maxRequests per windowSeconds.
func NewRateLimiter(enabled bool, maxRequests int, windowSeconds float64) *RateLimiter {
	if maxRequests < 1 {
		maxRequests = 1
	}
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      time.Duration(windowSeconds * float64(time.Second)),
		enabled:     enabled,
	}
}

// Wait blocks until a request may start or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if !rl.enabled {
		return ctx.Err()
	}

	for {
		wait := rl.reserve(time.Now())
		if wait <= 0 {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve records a start at now if the window has room and returns 0,
// otherwise it returns how long until the oldest start leaves the window.
func (rl *RateLimiter) reserve(now time.Time) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.window)
	kept := rl.starts[:0]
	for _, t := range rl.starts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	rl.starts = kept

	if len(rl.starts) < rl.maxRequests {
		rl.starts = append(rl.starts, now)
		return 0
	}
	return rl.starts[0].Sub(cutoff)
}
