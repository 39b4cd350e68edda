package relay

import (
	"sync"
	"time"
)

// Default per-peer publish budget. A well-behaved tab sends one
// session_check per presence round and at most one session_active per
// incoming check, so even many tabs checking at once stay far below this.
const (
	rateLimitEvents = 120
	rateLimitWindow = 10 * time.Second
)

// RateLimiter bounds how many envelopes a single peer may publish inside a
// sliding window. One limiter per connection; a peer over budget is
// disconnected rather than throttled. A tab that floods the presence topic
// is broken or hostile either way.
type RateLimiter struct {
	mu     sync.Mutex
	events []time.Time
	limit  int
	window time.Duration
}

// NewRateLimiter constructs a RateLimiter. Non-positive inputs fall back to
// the presence defaults.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = rateLimitEvents
	}
	if window <= 0 {
		window = rateLimitWindow
	}
	return &RateLimiter{
		events: make([]time.Time, 0, limit),
		limit:  limit,
		window: window,
	}
}

// Allow records an event at "now" and reports whether it fits the budget.
// Events arrive in time order, so expiry only ever trims the front.
func (r *RateLimiter) Allow(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cut := now.Add(-r.window)
	expired := 0
	for expired < len(r.events) && !r.events[expired].After(cut) {
		expired++
	}
	if expired > 0 {
		r.events = append(r.events[:0], r.events[expired:]...)
	}

	if len(r.events) >= r.limit {
		return false
	}
	r.events = append(r.events, now)
	return true
}
