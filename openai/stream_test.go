package openai_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fwojciec/proofread"
	"github.com/fwojciec/proofread/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sseServer serves each line as an SSE data event.
func sseServer(t *testing.T, lines ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		for _, l := range lines {
			fmt.Fprintf(w, "data: %s\n\n", l)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func delta(content string) string {
	return `{"id":"c1","choices":[{"index":0,"delta":{"content":` + fmt.Sprintf("%q", content) + `},"finish_reason":null}]}`
}

func finish(reason string) string {
	return `{"id":"c1","choices":[{"index":0,"delta":{},"finish_reason":"` + reason + `"}]}`
}

const usageChunk = `{"id":"c1","choices":[],"usage":{"prompt_tokens":42,"completion_tokens":7,"total_tokens":49}}`

func streamFrom(t *testing.T, lines ...string) proofread.Stream {
	t.Helper()
	srv := sseServer(t, lines...)
	s, err := openai.New("k", openai.WithBaseURL(srv.URL)).Stream(context.Background(), proofread.Request{Text: "hi"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func collectEvents(t *testing.T, s proofread.Stream) []proofread.Event {
	t.Helper()
	var events []proofread.Event
	for {
		evt, err := s.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		events = append(events, evt)
	}
	return events
}

func TestStream_TextResponse(t *testing.T) {
	t.Parallel()
	s := streamFrom(t,
		`{"id":"c1","choices":[{"index":0,"delta":{"role":"assistant","content":""},"finish_reason":null}]}`,
		delta("I have"),
		delta(" a cat."),
		finish("stop"),
		usageChunk,
		"[DONE]",
	)

	events := collectEvents(t, s)

	assert.Equal(t, []proofread.Event{
		proofread.EventTextDelta{Delta: "I have"},
		proofread.EventTextDelta{Delta: " a cat."},
	}, events)
	assert.Equal(t, proofread.StreamStateComplete, s.State())

	c, err := s.Completion()
	require.NoError(t, err)
	assert.Equal(t, "I have a cat.", c.Text)
	assert.Equal(t, proofread.StopEndTurn, c.StopReason)
	assert.Equal(t, "stop", c.RawStopReason)
	assert.Equal(t, proofread.Usage{InputTokens: 42, OutputTokens: 7}, c.Usage)
}

func TestStream_ReasoningContent(t *testing.T) {
	t.Parallel()
	s := streamFrom(t,
		`{"id":"c1","choices":[{"index":0,"delta":{"reasoning_content":"check verbs"},"finish_reason":null}]}`,
		delta("She goes."),
		finish("stop"),
		"[DONE]",
	)

	events := collectEvents(t, s)

	assert.Equal(t, []proofread.Event{
		proofread.EventThinkingDelta{Delta: "check verbs"},
		proofread.EventTextDelta{Delta: "She goes."},
	}, events)
}

func TestStream_FinishReasons(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want proofread.StopReason
	}{
		{"stop", proofread.StopEndTurn},
		{"length", proofread.StopLength},
		{"content_filter", proofread.StopError},
		{"tool_calls", proofread.StopUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			s := streamFrom(t, delta("x"), finish(tt.raw), "[DONE]")
			collectEvents(t, s)

			c, err := s.Completion()
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.StopReason)
			assert.Equal(t, tt.raw, c.RawStopReason)
		})
	}
}

func TestStream_EOFAfterFinishWithoutDone(t *testing.T) {
	t.Parallel()
	s := streamFrom(t, delta("ok"), finish("stop"))

	events := collectEvents(t, s)

	assert.Len(t, events, 1)
	assert.Equal(t, proofread.StreamStateComplete, s.State())
}

func TestStream_UnexpectedEnd(t *testing.T) {
	t.Parallel()
	s := streamFrom(t, delta("partial"))

	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, proofread.EventTextDelta{Delta: "partial"}, evt)

	_, err = s.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected end of stream")
	assert.Equal(t, proofread.StreamStateError, s.State())

	c, err := s.Completion()
	require.NoError(t, err)
	assert.Equal(t, "partial", c.Text)
	assert.Equal(t, proofread.StopError, c.StopReason)
}

func TestStream_MalformedChunk(t *testing.T) {
	t.Parallel()
	s := streamFrom(t, "{not json")

	_, err := s.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse chunk")
}

func TestStream_IgnoresCommentsAndOtherFields(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		body := strings.Join([]string{
			": keep-alive",
			"event: chunk",
			"data: " + delta("Hi"),
			"",
			"data:" + finish("stop"),
			"",
			"data: [DONE]",
			"",
		}, "\n")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	s, err := openai.New("k", openai.WithBaseURL(srv.URL)).Stream(context.Background(), proofread.Request{Text: "hi"})
	require.NoError(t, err)
	defer s.Close()

	events := collectEvents(t, s)
	assert.Equal(t, []proofread.Event{proofread.EventTextDelta{Delta: "Hi"}}, events)
}

func TestStream_StateAndClose(t *testing.T) {
	t.Parallel()

	t.Run("completion before next", func(t *testing.T) {
		t.Parallel()
		s := streamFrom(t, delta("a"), "[DONE]")
		assert.Equal(t, proofread.StreamStateNew, s.State())
		_, err := s.Completion()
		assert.ErrorIs(t, err, proofread.ErrStreamNotReady)
	})

	t.Run("close mid-stream aborts", func(t *testing.T) {
		t.Parallel()
		s := streamFrom(t, delta("a"), delta("b"), "[DONE]")
		_, err := s.Next()
		require.NoError(t, err)
		require.NoError(t, s.Close())
		assert.Equal(t, proofread.StreamStateClosed, s.State())

		c, err := s.Completion()
		require.NoError(t, err)
		assert.Equal(t, proofread.StopAborted, c.StopReason)

		_, err = s.Next()
		assert.ErrorIs(t, err, proofread.ErrStreamClosed)
	})

	t.Run("close after completion preserves stop reason", func(t *testing.T) {
		t.Parallel()
		s := streamFrom(t, delta("a"), finish("length"), "[DONE]")
		collectEvents(t, s)
		require.NoError(t, s.Close())

		c, err := s.Completion()
		require.NoError(t, err)
		assert.Equal(t, proofread.StopLength, c.StopReason)
	})
}

func TestStream_ContextCancellation(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		fmt.Fprintf(w, "data: %s\n\n", delta("Hi"))
		if flusher != nil {
			flusher.Flush()
		}
		close(started)
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := openai.New("k", openai.WithBaseURL(srv.URL)).Stream(ctx, proofread.Request{Text: "hi"})
	require.NoError(t, err)
	defer s.Close()

	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, proofread.EventTextDelta{Delta: "Hi"}, evt)

	<-started
	cancel()

	_, err = s.Next()
	require.Error(t, err)

	c, err := s.Completion()
	require.NoError(t, err)
	assert.Equal(t, proofread.StopAborted, c.StopReason)
	assert.Equal(t, proofread.StreamStateError, s.State())
}
