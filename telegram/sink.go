package telegram

import (
	"context"
	"errors"
	"unicode/utf16"

	"github.com/fwojciec/proofread"
	"github.com/rivo/uniseg"
)

// Interface compliance check.
var (
	_ proofread.Sink      = (*MessageSink)(nil)
	_ proofread.Throttled = (*APIError)(nil)
)

// Editor edits a sent message. *Client implements it.
type Editor interface {
	EditMessageText(ctx context.Context, p EditMessageTextParams) error
}

// MessageSink is a [proofread.Sink] bound to one sent message.
type MessageSink struct {
	editor    Editor
	chatID    int64
	messageID int64
	parseMode string
	format    func(string) string
}

// SinkOption configures a [MessageSink].
type SinkOption func(*MessageSink)

// WithParseMode sets the parse mode of every edit.
func WithParseMode(mode string) SinkOption {
	return func(s *MessageSink) { s.parseMode = mode }
}

// WithFormat sets the function that turns plain text into the markup of
// the parse mode. It runs after truncation.
func WithFormat(format func(string) string) SinkOption {
	return func(s *MessageSink) { s.format = format }
}

// NewMessageSink returns a sink that edits message messageID in chatID.
func NewMessageSink(editor Editor, chatID, messageID int64, opts ...SinkOption) *MessageSink {
	s := &MessageSink{
		editor:    editor,
		chatID:    chatID,
		messageID: messageID,
		format:    func(s string) string { return s },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Replace edits the message to show text. An edit rejected because the
// content is unchanged is not an error.
func (s *MessageSink) Replace(ctx context.Context, text string) error {
	err := s.editor.EditMessageText(ctx, EditMessageTextParams{
		ChatID:    s.chatID,
		MessageID: s.messageID,
		Text:      s.format(Truncate(text, MaxMessageLength)),
		ParseMode: s.parseMode,
	})
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.NotModified() {
		return nil
	}
	return err
}

// ellipsis marks truncated text.
const ellipsis = "…"

// Truncate shortens text to at most limit UTF-16 code units without
// splitting a grapheme cluster, appending an ellipsis when it cuts.
func Truncate(text string, limit int) string {
	if utf16Len(text) <= limit {
		return text
	}
	budget := limit - utf16Len(ellipsis)
	if budget <= 0 {
		return ""
	}
	n, used := 0, 0
	state := -1
	rest := text
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		w := utf16Len(cluster)
		if used+w > budget {
			break
		}
		used += w
		n += len(cluster)
	}
	return text[:n] + ellipsis
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
