package proofread

// Usage tracks token consumption for one completion.
//
// Providers normalize their API-specific fields: InputTokens counts prompt
// tokens, OutputTokens counts generated tokens. Values are clamped to zero
// when upstream data is inconsistent.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns the sum of input and output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}
