package proofread

import "time"

// Observer receives run lifecycle notifications, e.g. for metrics.
// Calls are made from the run's goroutine and must not block.
type Observer interface {
	RunStarted()
	// Published is called after every non-terminal publish attempt with
	// the sink's error, nil on success.
	Published(err error)
	RunFinished(r Result, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) RunStarted()                       {}
func (nopObserver) Published(error)                   {}
func (nopObserver) RunFinished(Result, time.Duration) {}
