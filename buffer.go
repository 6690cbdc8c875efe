package proofread

import "strings"

// Buffer accumulates streamed text in two parts: committed text, which has
// been folded for publishing, and the pending tail received since the last
// fold. Committed text only ever grows.
type Buffer struct {
	committed strings.Builder
	pending   strings.Builder
}

// Append adds fragment to the pending tail.
func (b *Buffer) Append(fragment string) {
	b.pending.WriteString(fragment)
}

// Fold moves the pending tail onto committed text and returns the new
// committed value.
func (b *Buffer) Fold() string {
	if b.pending.Len() > 0 {
		b.committed.WriteString(b.pending.String())
		b.pending.Reset()
	}
	return b.committed.String()
}

// Snapshot returns committed text without folding.
func (b *Buffer) Snapshot() string {
	return b.committed.String()
}
