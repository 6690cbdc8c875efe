// Package goldmark renders the Markdown a completion service writes into
// the two display formats proofread needs: Telegram's HTML subset and
// ANSI-styled terminal text.
//
// Both renderers walk the goldmark AST directly. Streaming snapshots are
// often cut mid-syntax ("**wor"); goldmark parses those as literal text, so
// every snapshot renders to well-formed output.
package goldmark

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Strikethrough))

func parse(source []byte) ast.Node {
	return md.Parser().Parse(text.NewReader(source))
}
