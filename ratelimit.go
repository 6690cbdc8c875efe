package proofread

import "time"

// RateLimiter decides whether a publish is allowed at a given instant. The
// decision and the commit are split so a caller can decline to publish
// without moving the timer. It is owned by a single run and is not safe for
// concurrent use.
type RateLimiter struct {
	interval time.Duration
	last     time.Time
}

// NewRateLimiter returns a limiter whose last publish is start.
func NewRateLimiter(interval time.Duration, start time.Time) *RateLimiter {
	return &RateLimiter{interval: interval, last: start}
}

// Allow reports whether at least one interval has passed since the last
// committed publish. It does not change state.
func (l *RateLimiter) Allow(now time.Time) bool {
	return now.Sub(l.last) >= l.interval
}

// Commit records now as the time of the last publish.
func (l *RateLimiter) Commit(now time.Time) {
	l.last = now
}
