package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/proofread"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ proofread.Provider = (*Client)(nil)

// Client implements [proofread.Provider] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID used when a request does not name one.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client: gc,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Stream sends a streaming request to the Gemini API and returns a
// [proofread.Stream] that emits text deltas.
func (c *Client) Stream(ctx context.Context, req proofread.Request) (proofread.Stream, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	iter := c.client.Models.GenerateContentStream(ctx, model, Contents(req), BuildConfig(req))
	return NewStreamFromIter(ctx, iter), nil
}

// Contents converts the request text to a single user turn.
func Contents(req proofread.Request) []*genai.Content {
	return []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: req.Text}},
	}}
}

// BuildConfig maps generation parameters to a genai config. Thoughts are
// not requested; the relay never shows them.
func BuildConfig(req proofread.Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = proofread.DefaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}

	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}

	return config
}
