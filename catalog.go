package proofread

import "context"

// Language is an interface language code, e.g. "en".
type Language string

// DefaultLanguage is used when a user has no stored preference and the
// client locale is unsupported.
const DefaultLanguage Language = "en"

// MessageKey identifies a localized string.
type MessageKey string

const (
	MessageSystemPrompt   MessageKey = "system_prompt"
	MessageWelcome        MessageKey = "welcome"
	MessageChooseLanguage MessageKey = "choose_language"
	MessageLanguageSet    MessageKey = "language_set"
	MessageChecking       MessageKey = "checking"
	MessageBusy           MessageKey = "busy"
	MessageEmptyInput     MessageKey = "empty_input"
	MessageTooLong        MessageKey = "too_long"
	MessageNoErrors       MessageKey = "no_errors"
	MessageNotEnglish     MessageKey = "not_english"
	MessageTimedOut       MessageKey = "timed_out"
	MessageFailed         MessageKey = "failed"
	MessageEmpty          MessageKey = "empty"
)

// Catalog returns localized display strings. Implementations fall back to
// DefaultLanguage for unknown languages and never return an empty string
// for a known key.
type Catalog interface {
	Message(lang Language, key MessageKey) string
}

// PreferenceStore persists each user's interface language.
type PreferenceStore interface {
	// Language returns ErrNotFound when the user has no stored preference.
	Language(ctx context.Context, userID int64) (Language, error)
	SetLanguage(ctx context.Context, userID int64, lang Language) error
}
