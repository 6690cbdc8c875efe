// Package bubbletea provides a Bubble Tea console front-end for proofread.
// The result block in the viewport is the display sink of each run.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/proofread"
)

// RunFunc checks text and publishes every snapshot to sink. It blocks until
// the run's terminal publish has been attempted.
type RunFunc func(ctx context.Context, text string, sink proofread.Sink) proofread.Result

// RelayRunFunc adapts a Relay to a RunFunc for the given interface language.
func RelayRunFunc(relay *proofread.Relay, catalog proofread.Catalog, lang proofread.Language) RunFunc {
	return func(ctx context.Context, text string, sink proofread.Sink) proofread.Result {
		req := proofread.CorrectionRequest(catalog, lang, text)
		return relay.Run(ctx, req, sink, proofread.WithLanguage(lang))
	}
}

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. The context is used for graceful shutdown: when cancelled, the
// program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// ReplaceMsg carries one published snapshot to the Bubble Tea model.
type ReplaceMsg struct {
	Text string
}

// RunDoneMsg signals that a run has finished.
type RunDoneMsg struct {
	Result proofread.Result
}

var _ proofread.Sink = (*channelSink)(nil)

// channelSink forwards each Replace to the model's update loop.
type channelSink struct {
	ch chan<- string
}

func (s *channelSink) Replace(ctx context.Context, text string) error {
	select {
	case s.ch <- text:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
