// Package gemini implements [proofread.Provider] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK. Streaming uses the SDK's
// iter.Seq2 iterator, wrapped into the pull-based [proofread.Stream]
// interface.
package gemini

const defaultModel = "gemini-2.5-flash"
