package proofread_test

import (
	"testing"

	"github.com/fwojciec/proofread"
	"github.com/stretchr/testify/assert"
)

func TestDefaultTheme(t *testing.T) {
	t.Parallel()
	theme := proofread.DefaultTheme()
	for name, idx := range map[string]int{
		"Accent":    theme.Accent,
		"Muted":     theme.Muted,
		"Streaming": theme.Streaming,
		"Success":   theme.Success,
		"Warning":   theme.Warning,
		"Error":     theme.Error,
	} {
		assert.GreaterOrEqual(t, idx, 0, name)
		assert.LessOrEqual(t, idx, 15, name)
	}
}
