package proofread_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fwojciec/proofread"
	"github.com/stretchr/testify/assert"
)

func TestRetryDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		want   time.Duration
		wantOK bool
	}{
		{name: "nil", err: nil},
		{name: "plain error", err: errors.New("boom")},
		{name: "throttled", err: throttledError{delay: 3 * time.Second}, want: 3 * time.Second, wantOK: true},
		{name: "wrapped throttled", err: fmt.Errorf("edit: %w", throttledError{delay: time.Second}), want: time.Second, wantOK: true},
		{name: "zero delay", err: throttledError{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d, ok := proofread.RetryDelay(tt.err)
			assert.Equal(t, tt.want, d)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}
