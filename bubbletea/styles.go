package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/proofread"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	UserMsg   lipgloss.Style
	Streaming lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
	Accent    lipgloss.Style
	UserBg    lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t proofread.Theme) Styles {
	return Styles{
		UserMsg:   lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		Streaming: lipgloss.NewStyle().Foreground(ansiColor(t.Streaming)),
		Success:   lipgloss.NewStyle().Foreground(ansiColor(t.Success)),
		Warning:   lipgloss.NewStyle().Foreground(ansiColor(t.Warning)),
		Error:     lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Muted:     lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Accent:    lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		UserBg:    lipgloss.NewStyle().PaddingLeft(1),
	}
}

// ForKind returns the style used for a terminal result of the given kind.
func (s Styles) ForKind(kind proofread.ResultKind) lipgloss.Style {
	switch kind {
	case proofread.KindNoErrors:
		return s.Success
	case proofread.KindNotEnglish, proofread.KindTimedOut:
		return s.Warning
	case proofread.KindFailed:
		return s.Error
	default:
		return lipgloss.NewStyle()
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
