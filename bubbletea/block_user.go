package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*UserMessageBlock)(nil)

// UserMessageBlock renders the text submitted for checking.
type UserMessageBlock struct {
	text   string
	styles Styles
}

// NewUserMessageBlock creates a UserMessageBlock.
func NewUserMessageBlock(text string, styles Styles) *UserMessageBlock {
	return &UserMessageBlock{text: text, styles: styles}
}

func (b *UserMessageBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *UserMessageBlock) View(width int) string {
	content := b.styles.UserMsg.Render("> ") + b.text
	return b.styles.UserBg.Width(width).Render(content)
}

// NoticeBlock renders a one-line message that is not a run result, such as
// a rejected input.
type NoticeBlock struct {
	text  string
	style lipgloss.Style
}

var _ MessageBlock = (*NoticeBlock)(nil)

// NewNoticeBlock creates a NoticeBlock rendered in the warning style.
func NewNoticeBlock(text string, styles Styles) *NoticeBlock {
	return &NoticeBlock{text: text, style: styles.Warning}
}

func (b *NoticeBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *NoticeBlock) View(width int) string {
	return lipgloss.NewStyle().Width(width).Render(b.style.Render(b.text))
}
