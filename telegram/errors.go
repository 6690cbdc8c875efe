package telegram

import (
	"fmt"
	"strings"
	"time"
)

// APIError is a failed Bot API call.
type APIError struct {
	Method      string
	Code        int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %s: %d %s", e.Method, e.Code, e.Description)
}

// NotModified reports whether an edit was rejected because the new content
// equals the current one.
func (e *APIError) NotModified() bool {
	return e.Code == 400 && strings.Contains(e.Description, "message is not modified")
}

// TooManyRequests reports whether the call hit a flood limit.
func (e *APIError) TooManyRequests() bool {
	return e.Code == 429
}

// RetryDelay returns the wait requested by a flood limit, or zero.
func (e *APIError) RetryDelay() time.Duration {
	if !e.TooManyRequests() {
		return 0
	}
	return e.RetryAfter
}
