package mock

import (
	"io"

	"github.com/fwojciec/proofread"
)

// Interface compliance check.
var _ proofread.Stream = (*Stream)(nil)

// Stream is a test double for proofread.Stream.
// Set the function fields for the methods you need. NextFn panics when nil
// to catch missing setup. CloseFn, StateFn and CompletionFn are nil-safe
// because callers commonly defer Close() and rarely inspect the rest.
type Stream struct {
	NextFn       func() (proofread.Event, error)
	StateFn      func() proofread.StreamState
	CompletionFn func() (proofread.Completion, error)
	CloseFn      func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (proofread.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() proofread.StreamState {
	if s.StateFn == nil {
		return proofread.StreamStateNew
	}
	return s.StateFn()
}

// Completion delegates to CompletionFn. Returns ErrStreamNotReady when
// CompletionFn is nil.
func (s *Stream) Completion() (proofread.Completion, error) {
	if s.CompletionFn == nil {
		return proofread.Completion{}, proofread.ErrStreamNotReady
	}
	return s.CompletionFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// NewStream returns a Stream that yields events in order and then io.EOF.
// Completion reports the concatenated text deltas once the stream is
// drained.
func NewStream(events ...proofread.Event) *Stream {
	var i int
	return &Stream{
		NextFn: func() (proofread.Event, error) {
			if i >= len(events) {
				return nil, io.EOF
			}
			evt := events[i]
			i++
			return evt, nil
		},
		StateFn: func() proofread.StreamState {
			switch {
			case i == 0:
				return proofread.StreamStateNew
			case i < len(events):
				return proofread.StreamStateStreaming
			default:
				return proofread.StreamStateComplete
			}
		},
		CompletionFn: func() (proofread.Completion, error) {
			if i < len(events) {
				return proofread.Completion{}, proofread.ErrStreamNotReady
			}
			var text string
			for _, evt := range events {
				if d, ok := evt.(proofread.EventTextDelta); ok {
					text += d.Delta
				}
			}
			return proofread.Completion{Text: text, StopReason: proofread.StopEndTurn}, nil
		},
	}
}
