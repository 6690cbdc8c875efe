// Package mock provides test doubles for proofread interfaces using function
// fields.
package mock

import (
	"context"
	"time"

	"github.com/fwojciec/proofread"
)

// Interface compliance checks.
var (
	_ proofread.Provider        = (*Provider)(nil)
	_ proofread.Sink            = (*Sink)(nil)
	_ proofread.Catalog         = (*Catalog)(nil)
	_ proofread.PreferenceStore = (*PreferenceStore)(nil)
	_ proofread.Observer        = (*Observer)(nil)
)

// Provider is a test double for proofread.Provider.
// Set StreamFn before calling Stream.
type Provider struct {
	StreamFn func(ctx context.Context, req proofread.Request) (proofread.Stream, error)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req proofread.Request) (proofread.Stream, error) {
	return p.StreamFn(ctx, req)
}

// Sink is a test double for proofread.Sink.
// Set ReplaceFn before calling Replace.
type Sink struct {
	ReplaceFn func(ctx context.Context, text string) error
}

// Replace delegates to ReplaceFn.
func (s *Sink) Replace(ctx context.Context, text string) error {
	return s.ReplaceFn(ctx, text)
}

// Catalog is a test double for proofread.Catalog.
// Set MessageFn before calling Message.
type Catalog struct {
	MessageFn func(lang proofread.Language, key proofread.MessageKey) string
}

// Message delegates to MessageFn.
func (c *Catalog) Message(lang proofread.Language, key proofread.MessageKey) string {
	return c.MessageFn(lang, key)
}

// PreferenceStore is a test double for proofread.PreferenceStore.
type PreferenceStore struct {
	LanguageFn    func(ctx context.Context, userID int64) (proofread.Language, error)
	SetLanguageFn func(ctx context.Context, userID int64, lang proofread.Language) error
}

// Language delegates to LanguageFn.
func (s *PreferenceStore) Language(ctx context.Context, userID int64) (proofread.Language, error) {
	return s.LanguageFn(ctx, userID)
}

// SetLanguage delegates to SetLanguageFn.
func (s *PreferenceStore) SetLanguage(ctx context.Context, userID int64, lang proofread.Language) error {
	return s.SetLanguageFn(ctx, userID, lang)
}

// Observer is a test double for proofread.Observer. All function fields are
// nil-safe because most tests only care about one of them.
type Observer struct {
	RunStartedFn  func()
	PublishedFn   func(err error)
	RunFinishedFn func(r proofread.Result, elapsed time.Duration)
}

// RunStarted delegates to RunStartedFn.
func (o *Observer) RunStarted() {
	if o.RunStartedFn != nil {
		o.RunStartedFn()
	}
}

// Published delegates to PublishedFn.
func (o *Observer) Published(err error) {
	if o.PublishedFn != nil {
		o.PublishedFn(err)
	}
}

// RunFinished delegates to RunFinishedFn.
func (o *Observer) RunFinished(r proofread.Result, elapsed time.Duration) {
	if o.RunFinishedFn != nil {
		o.RunFinishedFn(r, elapsed)
	}
}
