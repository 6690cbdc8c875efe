package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/fwojciec/proofread"
	"google.golang.org/genai"
)

// stream implements [proofread.Stream] by wrapping the genai SDK's
// streaming iterator. One response chunk may carry several parts, so
// decoded events are queued and handed out one per Next call.
type stream struct {
	ctx     context.Context
	pull    func() (*genai.GenerateContentResponse, error, bool)
	stop    func()
	state   proofread.StreamState
	pending []proofread.Event
	text    strings.Builder
	comp    proofread.Completion
	err     error
}

// Interface compliance check.
var _ proofread.Stream = (*stream)(nil)

// NewStreamFromIter wraps a genai streaming iterator as a [proofread.Stream].
// Exported for testing.
func NewStreamFromIter(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) proofread.Stream {
	next, stop := iter.Pull2(seq)
	return &stream{
		ctx:   ctx,
		pull:  next,
		stop:  stop,
		state: proofread.StreamStateNew,
	}
}

func (s *stream) Next() (proofread.Event, error) {
	switch s.state {
	case proofread.StreamStateComplete:
		return nil, io.EOF
	case proofread.StreamStateError:
		return nil, s.err
	case proofread.StreamStateClosed:
		return nil, fmt.Errorf("gemini: %w", proofread.ErrStreamClosed)
	}

	for {
		if len(s.pending) > 0 {
			evt := s.pending[0]
			s.pending = s.pending[1:]
			s.state = proofread.StreamStateStreaming
			return evt, nil
		}

		if err := s.ctx.Err(); err != nil {
			s.terminate(fmt.Errorf("gemini: %w", err))
			return nil, s.err
		}

		resp, err, ok := s.pull()
		if !ok {
			s.finalize()
			return nil, io.EOF
		}
		if err != nil {
			s.terminate(fmt.Errorf("gemini: %w", err))
			return nil, s.err
		}
		if resp == nil {
			continue
		}
		s.state = proofread.StreamStateStreaming
		if err := s.process(resp); err != nil {
			s.terminate(err)
			return nil, s.err
		}
	}
}

// process decodes one response chunk into queued events and updates usage
// and stop metadata.
func (s *stream) process(resp *genai.GenerateContentResponse) error {
	if len(resp.Candidates) == 0 && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		s.comp.RawStopReason = string(resp.PromptFeedback.BlockReason)
		return fmt.Errorf("gemini: prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}

	if u := resp.UsageMetadata; u != nil {
		s.comp.Usage.InputTokens = max(0, int(u.PromptTokenCount)-int(u.CachedContentTokenCount))
		s.comp.Usage.OutputTokens = int(u.CandidatesTokenCount)
	}

	if len(resp.Candidates) == 0 {
		return nil
	}
	cand := resp.Candidates[0]
	if cand.Content != nil {
		for _, p := range cand.Content.Parts {
			if p == nil || p.Text == "" {
				continue
			}
			if p.Thought {
				s.pending = append(s.pending, proofread.EventThinkingDelta{Delta: p.Text})
				continue
			}
			s.text.WriteString(p.Text)
			s.pending = append(s.pending, proofread.EventTextDelta{Delta: p.Text})
		}
	}
	if cand.FinishReason != "" {
		s.comp.RawStopReason = string(cand.FinishReason)
		s.comp.StopReason = mapFinishReason(cand.FinishReason)
	}
	return nil
}

// finalize marks normal completion. A stream that never reported a finish
// reason ended its turn.
func (s *stream) finalize() {
	s.state = proofread.StreamStateComplete
	if s.comp.StopReason == "" {
		s.comp.StopReason = proofread.StopEndTurn
		s.comp.RawStopReason = "end_turn"
	}
}

func (s *stream) terminate(err error) {
	s.state = proofread.StreamStateError
	s.err = err
	if s.ctx.Err() != nil {
		s.comp.StopReason = proofread.StopAborted
		s.comp.RawStopReason = "aborted"
		return
	}
	s.comp.StopReason = proofread.StopError
	if s.comp.RawStopReason == "" {
		s.comp.RawStopReason = "error"
	}
}

func (s *stream) State() proofread.StreamState {
	return s.state
}

func (s *stream) Completion() (proofread.Completion, error) {
	if s.state == proofread.StreamStateNew {
		return proofread.Completion{}, fmt.Errorf("gemini: %w", proofread.ErrStreamNotReady)
	}
	c := s.comp
	c.Text = s.text.String()
	return c, nil
}

func (s *stream) Close() error {
	if s.state != proofread.StreamStateComplete && s.state != proofread.StreamStateError {
		s.state = proofread.StreamStateClosed
		s.comp.StopReason = proofread.StopAborted
		s.comp.RawStopReason = "aborted"
	}
	s.stop()
	return nil
}

func mapFinishReason(r genai.FinishReason) proofread.StopReason {
	switch r {
	case genai.FinishReasonStop:
		return proofread.StopEndTurn
	case genai.FinishReasonMaxTokens:
		return proofread.StopLength
	case genai.FinishReasonSafety:
		return proofread.StopError
	default:
		return proofread.StopUnknown
	}
}
