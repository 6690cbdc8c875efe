package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/proofread"
	"github.com/fwojciec/proofread/goldmark"
)

var _ MessageBlock = (*ResultBlock)(nil)

// ResultBlock shows the message being edited by one run. Every Replace
// swaps the whole text. Finalized paragraphs (separated by a double
// newline) are rendered once per width and cached while later snapshots
// keep extending the same prefix.
type ResultBlock struct {
	raw    string
	result proofread.Result
	theme  proofread.Theme
	styles Styles

	finalizedRaw     string
	finalizedByWidth map[int]string
}

// NewResultBlock creates an empty block for a run that has just started.
func NewResultBlock(theme proofread.Theme, styles Styles) *ResultBlock {
	return &ResultBlock{
		theme:            theme,
		styles:           styles,
		finalizedByWidth: make(map[int]string),
	}
}

// Replace sets the displayed text to a new snapshot.
func (b *ResultBlock) Replace(text string) {
	b.raw = text
	if b.finalizedRaw != "" && !strings.HasPrefix(text, b.finalizedRaw+"\n\n") {
		b.finalizedRaw = ""
		clear(b.finalizedByWidth)
	}
	b.promoteFinalized()
}

// Finish records the run's outcome. The text shown stays whatever the
// terminal publish delivered.
func (b *ResultBlock) Finish(r proofread.Result) {
	b.result = r
}

// Text returns the last snapshot.
func (b *ResultBlock) Text() string { return b.raw }

// Result returns the outcome, or nil while the run is streaming.
func (b *ResultBlock) Result() proofread.Result { return b.result }

func (b *ResultBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *ResultBlock) View(width int) string {
	if b.result != nil && b.result.Kind() != proofread.KindCorrection {
		style := b.styles.ForKind(b.result.Kind())
		return lipgloss.NewStyle().Width(width).Render(style.Render(b.raw))
	}
	finalizedRendered := b.renderFinalized(width)
	trailing := b.trailingRaw()
	if hasUnclosedFence(trailing) {
		trailing += "\n```"
	}
	if trailing == "" {
		return finalizedRendered
	}
	trailingRendered := goldmark.Render(trailing, width, b.theme)
	if strings.TrimSpace(trailingRendered) == "" {
		return finalizedRendered
	}
	if finalizedRendered == "" {
		return trailingRendered
	}
	return strings.TrimRight(finalizedRendered, "\n") + "\n\n" + strings.TrimLeft(trailingRendered, "\n")
}

// promoteFinalized moves the stable prefix to the last "\n\n" boundary
// that does not fall inside an unclosed fenced code block.
func (b *ResultBlock) promoteFinalized() {
	raw := b.raw
	for end := len(raw); ; {
		idx := strings.LastIndex(raw[:end], "\n\n")
		if idx <= 0 {
			return
		}
		candidate := raw[:idx]
		if !hasUnclosedFence(candidate) {
			if candidate != b.finalizedRaw {
				b.finalizedRaw = candidate
				clear(b.finalizedByWidth)
			}
			return
		}
		end = idx
	}
}

func (b *ResultBlock) renderFinalized(width int) string {
	if width <= 0 || b.finalizedRaw == "" {
		return ""
	}
	if cached, ok := b.finalizedByWidth[width]; ok {
		return cached
	}
	rendered := goldmark.Render(b.finalizedRaw, width, b.theme)
	b.finalizedByWidth[width] = rendered
	return rendered
}

func (b *ResultBlock) trailingRaw() string {
	if b.finalizedRaw == "" {
		return b.raw
	}
	return strings.TrimPrefix(b.raw, b.finalizedRaw+"\n\n")
}

// hasUnclosedFence reports an odd number of "```" markers in s. Triple
// backticks inside inline code spans are miscounted.
func hasUnclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
