package bubbletea

import "github.com/fwojciec/proofread"

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// StatusLine exports statusLine for testing.
func StatusLine(m Model) string {
	return m.statusLine()
}

// Truncate exports truncate for testing.
var Truncate = truncate

// NewChannelSink exports channelSink for testing.
func NewChannelSink(ch chan<- string) proofread.Sink {
	return &channelSink{ch: ch}
}
