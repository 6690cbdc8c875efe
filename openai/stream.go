package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/proofread"
)

// stream implements [proofread.Stream] over an SSE chat completion body.
type stream struct {
	body     io.ReadCloser
	scanner  *bufio.Scanner
	ctx      context.Context
	state    proofread.StreamState
	pending  []proofread.Event
	text     strings.Builder
	comp     proofread.Completion
	finished bool // a finish_reason was received
	err      error
}

// Interface compliance check.
var _ proofread.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser) *stream {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &stream{
		body:    body,
		scanner: sc,
		ctx:     ctx,
		state:   proofread.StreamStateNew,
	}
}

// Next returns the next text or reasoning delta. Returns io.EOF after the
// [DONE] marker.
func (s *stream) Next() (proofread.Event, error) {
	switch s.state {
	case proofread.StreamStateComplete:
		return nil, io.EOF
	case proofread.StreamStateError:
		return nil, s.err
	case proofread.StreamStateClosed:
		return nil, fmt.Errorf("openai: %w", proofread.ErrStreamClosed)
	}

	for {
		if len(s.pending) > 0 {
			evt := s.pending[0]
			s.pending = s.pending[1:]
			return evt, nil
		}

		data, err := s.readData()
		if err != nil {
			if err == io.EOF && s.finished {
				// Some compatible servers close without [DONE].
				s.state = proofread.StreamStateComplete
				return nil, io.EOF
			}
			s.terminate(err)
			return nil, s.err
		}

		s.state = proofread.StreamStateStreaming
		if data == doneMarker {
			s.state = proofread.StreamStateComplete
			return nil, io.EOF
		}
		if err := s.processChunk(data); err != nil {
			s.terminate(err)
			return nil, s.err
		}
	}
}

// readData returns the payload of the next non-empty data line.
func (s *stream) readData() (string, error) {
	for s.scanner.Scan() {
		line := s.scanner.Text()
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			// Blank separators, comments and other fields.
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" {
			continue
		}
		return data, nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	return "", io.EOF
}

func (s *stream) processChunk(data string) error {
	var chunk apiChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return fmt.Errorf("openai: failed to parse chunk: %w", err)
	}

	if chunk.Usage != nil {
		s.comp.Usage.InputTokens = chunk.Usage.PromptTokens
		s.comp.Usage.OutputTokens = chunk.Usage.CompletionTokens
	}

	for _, ch := range chunk.Choices {
		if ch.Index != 0 {
			continue
		}
		if d := ch.Delta.ReasoningContent; d != "" {
			s.pending = append(s.pending, proofread.EventThinkingDelta{Delta: d})
		}
		if d := ch.Delta.Content; d != "" {
			s.text.WriteString(d)
			s.pending = append(s.pending, proofread.EventTextDelta{Delta: d})
		}
		if ch.FinishReason != nil {
			s.finished = true
			s.comp.RawStopReason = *ch.FinishReason
			s.comp.StopReason = mapFinishReason(*ch.FinishReason)
		}
	}
	return nil
}

// State returns the current stream state.
func (s *stream) State() proofread.StreamState {
	return s.state
}

// Completion returns the text assembled so far.
func (s *stream) Completion() (proofread.Completion, error) {
	if s.state == proofread.StreamStateNew {
		return proofread.Completion{}, fmt.Errorf("openai: %w", proofread.ErrStreamNotReady)
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

func (s *stream) terminate(err error) {
	s.state = proofread.StreamStateError
	if err == io.EOF {
		s.err = fmt.Errorf("openai: unexpected end of stream")
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

func mapFinishReason(raw string) proofread.StopReason {
	switch raw {
	case "stop":
		return proofread.StopEndTurn
	case "length":
		return proofread.StopLength
	case "content_filter":
		return proofread.StopError
	default:
		return proofread.StopUnknown
	}
}
