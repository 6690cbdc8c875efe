package proofread

import (
	"context"
	"errors"
	"time"
)

// Sink is the display surface whose content is repeatedly replaced while a
// response streams in. Replace may fail on any call (content unchanged,
// too many requests, ...); the relay treats every failure as transient.
//
// A Sink is bound to one message surface for its whole lifetime.
type Sink interface {
	Replace(ctx context.Context, text string) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, text string) error

// Replace calls f(ctx, text).
func (f SinkFunc) Replace(ctx context.Context, text string) error {
	return f(ctx, text)
}

// Throttled is implemented by sink errors that ask the caller to wait
// before trying again. RetryDelay returns zero when no wait is requested.
type Throttled interface {
	RetryDelay() time.Duration
}

// RetryDelay returns the wait requested by err, if any error in its chain
// implements Throttled.
func RetryDelay(err error) (time.Duration, bool) {
	var t Throttled
	if !errors.As(err, &t) {
		return 0, false
	}
	d := t.RetryDelay()
	return d, d > 0
}
