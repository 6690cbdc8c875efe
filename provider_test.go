package proofread_test

import (
	"testing"

	"github.com/fwojciec/proofread"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamState_ZeroValue(t *testing.T) {
	t.Parallel()
	var s proofread.StreamState
	assert.Equal(t, proofread.StreamStateNew, s, "zero-value StreamState should be StreamStateNew")
}

func TestEventTypeSwitch_Exhaustive(t *testing.T) {
	t.Parallel()
	events := []proofread.Event{
		proofread.EventTextDelta{Delta: "hello"},
		proofread.EventThinkingDelta{Delta: "reasoning"},
	}
	assert.Len(t, events, 2, "update slice and switch when adding new Event types")
	for _, e := range events {
		switch e.(type) {
		case proofread.EventTextDelta:
		case proofread.EventThinkingDelta:
		default:
			t.Fatalf("unhandled event type %T", e)
		}
	}
}

func TestRequest_Validate(t *testing.T) {
	t.Parallel()
	temp := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		req     proofread.Request
		wantErr bool
	}{
		{"minimal", proofread.Request{Text: "hi"}, false},
		{"empty text", proofread.Request{}, true},
		{"temperature in range", proofread.Request{Text: "hi", Temperature: temp(0.2)}, false},
		{"temperature too high", proofread.Request{Text: "hi", Temperature: temp(2.5)}, true},
		{"temperature negative", proofread.Request{Text: "hi", Temperature: temp(-0.1)}, true},
		{"negative max tokens", proofread.Request{Text: "hi", MaxTokens: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.req.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, proofread.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCorrectionRequest(t *testing.T) {
	t.Parallel()
	catalog := staticCatalog{proofread.MessageSystemPrompt: "You are a proofreader."}

	req := proofread.CorrectionRequest(catalog, "en", "I has a cat")

	assert.Equal(t, "You are a proofreader.", req.SystemPrompt)
	assert.Equal(t, "Check this English text:\nI has a cat", req.Text)
	assert.Equal(t, proofread.DefaultMaxTokens, req.MaxTokens)
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.2, *req.Temperature, 1e-9)
	assert.Empty(t, req.Model)
	assert.NoError(t, req.Validate())
}

func TestUsage_Total(t *testing.T) {
	t.Parallel()
	u := proofread.Usage{InputTokens: 10, OutputTokens: 5}
	assert.Equal(t, 15, u.Total())
}

func TestValidateInput(t *testing.T) {
	t.Parallel()

	t.Run("accepts text within limit", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, proofread.ValidateInput("one two three", 3))
	})

	t.Run("rejects blank text", func(t *testing.T) {
		t.Parallel()
		err := proofread.ValidateInput(" \n\t ", 10)
		assert.ErrorIs(t, err, proofread.ErrValidation)
		assert.ErrorIs(t, err, proofread.ErrEmptyInput)
	})

	t.Run("rejects text over limit", func(t *testing.T) {
		t.Parallel()
		err := proofread.ValidateInput("one two three four", 3)
		assert.ErrorIs(t, err, proofread.ErrValidation)
		assert.ErrorIs(t, err, proofread.ErrTooManyWords)
		assert.Contains(t, err.Error(), "4 words, limit is 3")
	})

	t.Run("zero limit disables upper bound", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, proofread.ValidateInput("one two three four", 0))
	})
}

func TestCountWords(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, proofread.CountWords(""))
	assert.Equal(t, 3, proofread.CountWords("  I  has\ncats "))
	assert.Equal(t, 4, proofread.CountWords("I has\ta cat"))
}

func TestInputErrorText(t *testing.T) {
	t.Parallel()

	catalog := staticCatalog{
		proofread.MessageEmptyInput: "Send me some text.",
		proofread.MessageTooLong:    "Too long, max {max} words.",
	}

	t.Run("too many words substitutes the limit", func(t *testing.T) {
		t.Parallel()
		err := proofread.ValidateInput("a b c d", 3)
		assert.Equal(t, "Too long, max 3 words.", proofread.InputErrorText(catalog, "en", err, 3))
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		err := proofread.ValidateInput("   ", 3)
		assert.Equal(t, "Send me some text.", proofread.InputErrorText(catalog, "en", err, 3))
	})
}
