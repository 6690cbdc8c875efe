package anthropic

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/proofread"
)

// stream implements [proofread.Stream] by parsing SSE events from an HTTP
// response body.
type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	ctx     context.Context
	state   proofread.StreamState
	text    strings.Builder
	comp    proofread.Completion
	err     error // terminal error, if any
}

// Interface compliance check.
var _ proofread.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser) *stream {
	return &stream{
		body:    body,
		scanner: bufio.NewScanner(body),
		ctx:     ctx,
		state:   proofread.StreamStateNew,
	}
}

// Next reads the next semantic event from the SSE stream.
// Returns io.EOF when the stream completes normally.
func (s *stream) Next() (proofread.Event, error) {
	switch s.state {
	case proofread.StreamStateComplete:
		return nil, io.EOF
	case proofread.StreamStateError:
		return nil, s.err
	case proofread.StreamStateClosed:
		return nil, fmt.Errorf("anthropic: %w", proofread.ErrStreamClosed)
	}

	for {
		eventType, data, err := s.readSSEEvent()
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}

		s.state = proofread.StreamStateStreaming

		evt, err := s.processEvent(eventType, data)
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}

		// processEvent may set a terminal state (e.g. message_stop).
		if s.state == proofread.StreamStateComplete {
			return nil, io.EOF
		}

		if evt != nil {
			return evt, nil
		}
		// Non-semantic event (ping, message_start, etc.) - keep reading.
	}
}

// State returns the current stream state.
func (s *stream) State() proofread.StreamState {
	return s.state
}

// Completion returns the text assembled so far.
func (s *stream) Completion() (proofread.Completion, error) {
	if s.state == proofread.StreamStateNew {
		return proofread.Completion{}, fmt.Errorf("anthropic: %w", proofread.ErrStreamNotReady)
	}
	c := s.comp
	c.Text = s.text.String()
	return c, nil
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	if s.state != proofread.StreamStateComplete && s.state != proofread.StreamStateError {
		s.state = proofread.StreamStateClosed
		s.comp.StopReason = proofread.StopAborted
		s.comp.RawStopReason = "aborted"
	}
	return s.body.Close()
}

// terminate records a terminal error and sets the appropriate state and stop reason.
func (s *stream) terminate(err error) {
	s.state = proofread.StreamStateError
	if err == io.EOF {
		// Normal completion via message_stop sets StreamStateComplete
		// before we get here, so a raw EOF means the stream was cut short.
		s.err = fmt.Errorf("anthropic: unexpected end of stream")
		s.comp.StopReason = proofread.StopError
		s.comp.RawStopReason = "error"
		return
	}
	s.err = err
	if s.ctx.Err() != nil {
		s.comp.StopReason = proofread.StopAborted
		s.comp.RawStopReason = "aborted"
	} else {
		s.comp.StopReason = proofread.StopError
		s.comp.RawStopReason = "error"
	}
}

// readSSEEvent reads lines until a complete SSE event is assembled.
// Returns the event type and the data payload.
func (s *stream) readSSEEvent() (string, string, error) {
	var eventType string
	var dataBuf strings.Builder

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			// Empty line signals end of event.
			if dataBuf.Len() > 0 {
				return eventType, dataBuf.String(), nil
			}
			continue
		}

		if strings.HasPrefix(line, "event: ") {
			eventType = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(strings.TrimPrefix(line, "data: "))
		}
		// Ignore comments (lines starting with ':') and unknown fields.
	}

	if err := s.scanner.Err(); err != nil {
		return "", "", fmt.Errorf("anthropic: %w", err)
	}

	if dataBuf.Len() > 0 {
		return eventType, dataBuf.String(), nil
	}
	return "", "", io.EOF
}

// processEvent maps an SSE event to a semantic proofread.Event.
// Returns nil event for non-semantic events (ping, message_start, etc.).
func (s *stream) processEvent(eventType, data string) (proofread.Event, error) {
	switch eventType {
	case "message_start":
		return nil, s.handleMessageStart(data)
	case "content_block_delta":
		return s.handleContentBlockDelta(data)
	case "message_delta":
		return nil, s.handleMessageDelta(data)
	case "message_stop":
		s.state = proofread.StreamStateComplete
		return nil, nil
	case "error":
		return nil, s.handleError(data)
	default:
		// content_block_start/stop, ping and unknown types carry nothing
		// a text-only completion needs.
		return nil, nil
	}
}

func (s *stream) handleMessageStart(data string) error {
	var evt sseMessageStart
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse message_start: %w", err)
	}
	s.comp.Usage.InputTokens = evt.Message.Usage.InputTokens
	return nil
}

func (s *stream) handleContentBlockDelta(data string) (proofread.Event, error) {
	var evt sseContentBlockDelta
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return nil, fmt.Errorf("anthropic: failed to parse content_block_delta: %w", err)
	}

	switch evt.Delta.Type {
	case "text_delta":
		s.text.WriteString(evt.Delta.Text)
		return proofread.EventTextDelta{Delta: evt.Delta.Text}, nil
	case "thinking_delta":
		return proofread.EventThinkingDelta{Delta: evt.Delta.Thinking}, nil
	default:
		return nil, nil
	}
}

func (s *stream) handleMessageDelta(data string) error {
	var evt sseMessageDelta
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse message_delta: %w", err)
	}

	s.comp.Usage.OutputTokens = evt.Usage.OutputTokens
	if evt.Usage.InputTokens != nil {
		s.comp.Usage.InputTokens = *evt.Usage.InputTokens
	}

	if evt.Delta.StopReason != nil {
		s.comp.RawStopReason = *evt.Delta.StopReason
		s.comp.StopReason = mapStopReason(*evt.Delta.StopReason)
	}
	return nil
}

func (s *stream) handleError(data string) error {
	var evt sseError
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse error event: %w", err)
	}
	return fmt.Errorf("anthropic: %s: %s", evt.Error.Type, evt.Error.Message)
}

func mapStopReason(raw string) proofread.StopReason {
	switch raw {
	case "end_turn", "stop_sequence":
		return proofread.StopEndTurn
	case "max_tokens":
		return proofread.StopLength
	default:
		return proofread.StopUnknown
	}
}
