package proofread

import "time"

// Last returns the time of the last committed publish.
func (l *RateLimiter) Last() time.Time {
	return l.last
}

// Pending returns the tail received since the last fold.
func (b *Buffer) Pending() string {
	return b.pending.String()
}
