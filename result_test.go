package proofread_test

import (
	"testing"

	"github.com/fwojciec/proofread"
	"github.com/stretchr/testify/assert"
)

// staticCatalog returns the mapped string for a key, or the key itself.
type staticCatalog map[proofread.MessageKey]string

func (c staticCatalog) Message(_ proofread.Language, key proofread.MessageKey) string {
	if s, ok := c[key]; ok {
		return s
	}
	return string(key)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want proofread.Result
	}{
		{"plain correction", "I have a cat.", proofread.ResultCorrection{Text: "I have a cat."}},
		{"exact no errors sentinel", "NO_ERRORS_FOUND", proofread.ResultNoErrors{}},
		{"sentinel with whitespace", "  NO_ERRORS_FOUND\n", proofread.ResultNoErrors{}},
		{"sentinel after text", "Hello world NO_ERRORS_FOUND", proofread.ResultNoErrors{}},
		{"not english mid text", "Sorry, NOT_IN_ENGLISH detected here", proofread.ResultNotEnglish{}},
		{"no errors wins over not english", "NOT_IN_ENGLISH NO_ERRORS_FOUND", proofread.ResultNoErrors{}},
		{"empty text", "", proofread.ResultCorrection{Text: ""}},
		{"lowercase is not a sentinel", "no_errors_found", proofread.ResultCorrection{Text: "no_errors_found"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := proofread.Classify(tt.text)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, proofread.Classify(tt.text), "classification must be idempotent")
		})
	}
}

func TestResult_Kind(t *testing.T) {
	t.Parallel()
	assert.Equal(t, proofread.KindCorrection, proofread.ResultCorrection{}.Kind())
	assert.Equal(t, proofread.KindNoErrors, proofread.ResultNoErrors{}.Kind())
	assert.Equal(t, proofread.KindNotEnglish, proofread.ResultNotEnglish{}.Kind())
	assert.Equal(t, proofread.KindTimedOut, proofread.ResultTimedOut{}.Kind())
	assert.Equal(t, proofread.KindFailed, proofread.ResultFailed{}.Kind())
}

func TestTerminalText(t *testing.T) {
	t.Parallel()
	catalog := staticCatalog{
		proofread.MessageNoErrors:   "No errors!",
		proofread.MessageNotEnglish: "Not English.",
		proofread.MessageTimedOut:   "Too slow.",
		proofread.MessageFailed:     "Something broke.",
		proofread.MessageEmpty:      "Empty answer.",
	}

	tests := []struct {
		name   string
		result proofread.Result
		want   string
	}{
		{"correction is verbatim", proofread.ResultCorrection{Text: "I **have** a cat."}, "I **have** a cat."},
		{"empty correction", proofread.ResultCorrection{Text: " \n"}, "Empty answer."},
		{"no errors", proofread.ResultNoErrors{}, "No errors!"},
		{"not english", proofread.ResultNotEnglish{}, "Not English."},
		{"timed out", proofread.ResultTimedOut{}, "Too slow."},
		{"failure hides reason", proofread.ResultFailed{Reason: "dial tcp: i/o timeout"}, "Something broke."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, proofread.TerminalText(tt.result, "en", catalog))
		})
	}
}
