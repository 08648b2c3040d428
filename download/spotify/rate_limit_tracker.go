package spotify

import (
	"sync"
	"time"
)

// RateLimitInfo describes the most recent rate limit signal.
type RateLimitInfo struct {
	RetryAfter time.Duration
	DetectedAt time.Time
	ExpiresAt  time.Time
}

// RateLimitTracker remembers the last rate limit seen so an aborted harvest
// can report when it is worth retrying.
type RateLimitTracker struct {
	mu   sync.Mutex
	info *RateLimitInfo
	now  func() time.Time
}

// NewRateLimitTracker creates a new rate limit tracker.
func NewRateLimitTracker() *RateLimitTracker {
	return &RateLimitTracker{now: time.Now}
}

// Update records a rate limit with the given retry-after in seconds.
func (t *RateLimitTracker) Update(retryAfterSeconds int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	retryAfter := time.Duration(retryAfterSeconds) * time.Second
	t.info = &RateLimitInfo{
		RetryAfter: retryAfter,
		DetectedAt: now,
		ExpiresAt:  now.Add(retryAfter),
	}
}

// Info returns a copy of the active rate limit, or nil if none or expired.
func (t *RateLimitTracker) Info() *RateLimitInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.info == nil {
		return nil
	}
	if !t.now().Before(t.info.ExpiresAt) {
		t.info = nil
		return nil
	}
	info := *t.info
	return &info
}

// Clear forgets the recorded rate limit.
func (t *RateLimitTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.info = nil
}
