package proofread

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request or user input failed validation.
	ErrValidation = errors.New("validation error")

	// ErrEmptyInput indicates the user submitted no words to check.
	ErrEmptyInput = errors.New("empty input")

	// ErrTooManyWords indicates the user input exceeds the word limit.
	ErrTooManyWords = errors.New("too many words")

	// ErrStreamNotReady indicates Completion() was called before Next().
	ErrStreamNotReady = errors.New("stream not ready: call Next() first")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")

	// ErrNotFound indicates a stored preference does not exist.
	ErrNotFound = errors.New("not found")
)
