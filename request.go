package proofread

import "fmt"

// Default generation parameters for grammar corrections.
const (
	DefaultMaxTokens   = 1500
	DefaultTemperature = 0.2
)

// userPromptPrefix frames the user's text for the completion service.
const userPromptPrefix = "Check this English text:\n"

// Request carries model selection and generation parameters for one
// completion. The provider uses its own defaults when fields are zero/nil.
type Request struct {
	Model        string // model ID, provider-specific; empty = provider default
	SystemPrompt string
	Text         string
	MaxTokens    int      // 0 = provider default
	Temperature  *float64 // nil = provider default
}

// Validate checks universal constraints on Request.
// Provider implementations may apply additional provider-specific validation.
func (r Request) Validate() error {
	if r.Text == "" {
		return fmt.Errorf("text must not be empty: %w", ErrValidation)
	}
	if r.Temperature != nil {
		if *r.Temperature < 0 || *r.Temperature > 2 {
			return fmt.Errorf("temperature must be in [0, 2], got %g: %w", *r.Temperature, ErrValidation)
		}
	}
	if r.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative, got %d: %w", r.MaxTokens, ErrValidation)
	}
	return nil
}

// CorrectionRequest builds the grammar-check request for text, using the
// system prompt of the user's interface language.
func CorrectionRequest(catalog Catalog, lang Language, text string) Request {
	temp := DefaultTemperature
	return Request{
		SystemPrompt: catalog.Message(lang, MessageSystemPrompt),
		Text:         userPromptPrefix + text,
		MaxTokens:    DefaultMaxTokens,
		Temperature:  &temp,
	}
}
