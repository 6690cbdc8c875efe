package goldmark

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

// TelegramHTML converts Markdown to the HTML subset accepted by the Bot API
// with parse_mode HTML: b, i, s, code, pre, a and blockquote. Everything
// else is flattened to escaped text, so the result is always accepted.
func TelegramHTML(source string) string {
	if source == "" {
		return ""
	}
	src := []byte(source)
	var buf bytes.Buffer
	h := htmlRenderer{source: src}
	h.blocks(parse(src), &buf)
	return strings.TrimRight(buf.String(), "\n")
}

type htmlRenderer struct {
	source []byte
}

func (h htmlRenderer) blocks(node ast.Node, buf *bytes.Buffer) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		h.block(c, buf)
		if c.NextSibling() != nil {
			buf.WriteString("\n")
		}
	}
}

func (h htmlRenderer) block(node ast.Node, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		h.inlines(n, buf)
		buf.WriteString("\n")

	case *ast.Heading:
		buf.WriteString("<b>")
		h.inlines(n, buf)
		buf.WriteString("</b>\n")

	case *ast.FencedCodeBlock:
		if lang := string(n.Language(h.source)); lang != "" {
			buf.WriteString(`<pre><code class="language-` + escapeAttr(lang) + `">`)
			h.lines(n, buf)
			buf.WriteString("</code></pre>\n")
			return
		}
		buf.WriteString("<pre>")
		h.lines(n, buf)
		buf.WriteString("</pre>\n")

	case *ast.CodeBlock:
		buf.WriteString("<pre>")
		h.lines(n, buf)
		buf.WriteString("</pre>\n")

	case *ast.Blockquote:
		var inner bytes.Buffer
		h.blocks(n, &inner)
		buf.WriteString("<blockquote>")
		buf.WriteString(strings.TrimRight(inner.String(), "\n"))
		buf.WriteString("</blockquote>\n")

	case *ast.List:
		h.list(n, buf, 0)

	case *ast.ThematicBreak:
		buf.WriteString("———\n")

	case *ast.HTMLBlock:
		// Raw HTML from the model is shown, not interpreted.
		h.lines(n, buf)
		if n.HasClosure() {
			buf.WriteString(escape(string(n.ClosureLine.Value(h.source))))
		}

	default:
		h.blocks(n, buf)
	}
}

func (h htmlRenderer) list(node *ast.List, buf *bytes.Buffer, depth int) {
	num := node.Start
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		buf.WriteString(strings.Repeat("  ", depth))
		if node.IsOrdered() {
			buf.WriteString(strconv.Itoa(num) + ". ")
			num++
		} else {
			buf.WriteString("• ")
		}
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.List:
				h.list(in, buf, depth+1)
			case *ast.Paragraph, *ast.TextBlock:
				h.inlines(in, buf)
				buf.WriteString("\n")
			default:
				h.block(in, buf)
			}
		}
	}
}

// lines writes the raw lines of a code or HTML block, escaped.
func (h htmlRenderer) lines(node ast.Node, buf *bytes.Buffer) {
	lines := node.Lines()
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(h.source))
	}
	buf.WriteString(escape(strings.TrimRight(b.String(), "\n")))
}

func (h htmlRenderer) inlines(node ast.Node, buf *bytes.Buffer) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		h.inline(c, buf)
	}
}

func (h htmlRenderer) inline(node ast.Node, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Text:
		buf.WriteString(escape(string(n.Segment.Value(h.source))))
		if n.SoftLineBreak() || n.HardLineBreak() {
			buf.WriteByte('\n')
		}

	case *ast.String:
		buf.WriteString(escape(string(n.Value)))

	case *ast.Emphasis:
		tag := "i"
		if n.Level >= 2 {
			tag = "b"
		}
		buf.WriteString("<" + tag + ">")
		h.inlines(n, buf)
		buf.WriteString("</" + tag + ">")

	case *east.Strikethrough:
		buf.WriteString("<s>")
		h.inlines(n, buf)
		buf.WriteString("</s>")

	case *ast.CodeSpan:
		buf.WriteString("<code>")
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				buf.WriteString(escape(string(t.Segment.Value(h.source))))
			}
		}
		buf.WriteString("</code>")

	case *ast.Link:
		buf.WriteString(`<a href="` + escapeAttr(string(n.Destination)) + `">`)
		h.inlines(n, buf)
		buf.WriteString("</a>")

	case *ast.AutoLink:
		url := string(n.URL(h.source))
		if n.AutoLinkType == ast.AutoLinkEmail {
			buf.WriteString(escape(url))
			return
		}
		buf.WriteString(`<a href="` + escapeAttr(url) + `">` + escape(url) + "</a>")

	case *ast.Image:
		h.inlines(n, buf)

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.WriteString(escape(string(seg.Value(h.source))))
		}

	default:
		h.inlines(n, buf)
	}
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// escape escapes the three characters the Bot API requires in text.
func escape(s string) string { return textEscaper.Replace(s) }

func escapeAttr(s string) string { return attrEscaper.Replace(s) }
