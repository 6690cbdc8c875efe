// Package openai implements [proofread.Provider] for the OpenAI Chat
// Completions API and compatible endpoints.
//
// Responses are streamed as SSE "data:" lines carrying chat completion
// chunks, terminated by "data: [DONE]". The stream is exposed through the
// pull-based [proofread.Stream] interface.
package openai

const (
	defaultBaseURL  = "https://api.openai.com"
	defaultModel    = "gpt-4.1-mini"
	completionsPath = "/v1/chat/completions"
	doneMarker      = "[DONE]"
)

type apiRequest struct {
	Model         string            `json:"model"`
	Messages      []apiMessage      `json:"messages"`
	Stream        bool              `json:"stream"`
	StreamOptions *apiStreamOptions `json:"stream_options,omitempty"`
	MaxTokens     int               `json:"max_tokens,omitempty"`
	Temperature   *float64          `json:"temperature,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiStreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// apiChunk is one streamed chat completion chunk. The final chunk of a
// stream with include_usage has no choices and carries the usage totals.
type apiChunk struct {
	ID      string      `json:"id"`
	Choices []apiChoice `json:"choices"`
	Usage   *apiUsage   `json:"usage"`
}

type apiChoice struct {
	Index        int      `json:"index"`
	Delta        apiDelta `json:"delta"`
	FinishReason *string  `json:"finish_reason"`
}

type apiDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
	// ReasoningContent is sent by compatible reasoning models.
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

type apiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type apiErrorResponse struct {
	Error apiErrorDetail `json:"error"`
}

type apiErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}
