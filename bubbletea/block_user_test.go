package bubbletea_test

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/proofread"
	bt "github.com/fwojciec/proofread/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestUserMessageBlock_View(t *testing.T) {
	t.Parallel()

	t.Run("renders text with prompt prefix", func(t *testing.T) {
		t.Parallel()
		styles := bt.NewStyles(proofread.DefaultTheme())
		block := bt.NewUserMessageBlock("I has a cat", styles)
		view := block.View(80)
		assert.Contains(t, view, "> ")
		assert.Contains(t, view, "I has a cat")
	})

	t.Run("pads each line to full width", func(t *testing.T) {
		t.Parallel()
		styles := bt.NewStyles(proofread.DefaultTheme())
		block := bt.NewUserMessageBlock("test", styles)
		view := block.View(40)
		for _, line := range strings.Split(view, "\n") {
			assert.Equal(t, 40, lipgloss.Width(line))
		}
	})

	t.Run("wraps long text to width", func(t *testing.T) {
		t.Parallel()
		styles := bt.NewStyles(proofread.DefaultTheme())
		longText := "short words that keep going and going beyond the viewport width easily"
		block := bt.NewUserMessageBlock(longText, styles)
		view := block.View(30)
		assert.Contains(t, view, "easily")
		assert.Greater(t, len(strings.Split(view, "\n")), 1)
	})
}

func TestNoticeBlock_View(t *testing.T) {
	t.Parallel()

	styles := bt.NewStyles(proofread.DefaultTheme())
	block := bt.NewNoticeBlock("Too long, max 300 words.", styles)
	view := block.View(80)
	assert.Contains(t, view, "Too long, max 300 words.")
	assert.Equal(t, 80, lipgloss.Width(view))
}
