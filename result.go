package proofread

import "strings"

// Sentinel markers the completion service emits instead of a correction.
const (
	SentinelNoErrors   = "NO_ERRORS_FOUND"
	SentinelNotEnglish = "NOT_IN_ENGLISH"
)

// ResultKind names a Result variant for logs and metrics.
type ResultKind string

const (
	KindCorrection ResultKind = "correction"
	KindNoErrors   ResultKind = "no_errors"
	KindNotEnglish ResultKind = "not_english"
	KindTimedOut   ResultKind = "timed_out"
	KindFailed     ResultKind = "failed"
)

// Result is a sealed interface for the terminal outcome of one run.
// Kind() returns the variant name without requiring a type switch.
type Result interface {
	result()
	Kind() ResultKind
}

// ResultCorrection carries the completion text to show verbatim.
type ResultCorrection struct {
	Text string
}

func (ResultCorrection) result() {}

// Kind returns KindCorrection.
func (ResultCorrection) Kind() ResultKind { return KindCorrection }

// ResultNoErrors means the checked text needs no changes.
type ResultNoErrors struct{}

func (ResultNoErrors) result() {}

// Kind returns KindNoErrors.
func (ResultNoErrors) Kind() ResultKind { return KindNoErrors }

// ResultNotEnglish means the checked text is not English.
type ResultNotEnglish struct{}

func (ResultNotEnglish) result() {}

// Kind returns KindNotEnglish.
func (ResultNotEnglish) Kind() ResultKind { return KindNotEnglish }

// ResultTimedOut means no complete answer arrived before the deadline.
type ResultTimedOut struct{}

func (ResultTimedOut) result() {}

// Kind returns KindTimedOut.
func (ResultTimedOut) Kind() ResultKind { return KindTimedOut }

// ResultFailed means the completion source failed. Reason is diagnostic
// only and is never shown to the end user.
type ResultFailed struct {
	Reason string
}

func (ResultFailed) result() {}

// Kind returns KindFailed.
func (ResultFailed) Kind() ResultKind { return KindFailed }

// Interface compliance checks.
var (
	_ Result = ResultCorrection{}
	_ Result = ResultNoErrors{}
	_ Result = ResultNotEnglish{}
	_ Result = ResultTimedOut{}
	_ Result = ResultFailed{}
)

// Classify maps the final committed text to a Result. Sentinels match by
// substring, so a sentinel quoted inside an ordinary correction still wins.
func Classify(text string) Result {
	switch {
	case strings.Contains(text, SentinelNoErrors):
		return ResultNoErrors{}
	case strings.Contains(text, SentinelNotEnglish):
		return ResultNotEnglish{}
	default:
		return ResultCorrection{Text: text}
	}
}

// TerminalText returns the string that replaces the streaming display once
// r is known.
func TerminalText(r Result, lang Language, catalog Catalog) string {
	switch r := r.(type) {
	case ResultCorrection:
		if strings.TrimSpace(r.Text) == "" {
			return catalog.Message(lang, MessageEmpty)
		}
		return r.Text
	case ResultNoErrors:
		return catalog.Message(lang, MessageNoErrors)
	case ResultNotEnglish:
		return catalog.Message(lang, MessageNotEnglish)
	case ResultTimedOut:
		return catalog.Message(lang, MessageTimedOut)
	default:
		return catalog.Message(lang, MessageFailed)
	}
}
