package goldmark

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/proofread"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

// Render converts Markdown to ANSI-styled terminal text. Paragraphs and
// list items are word-wrapped to width; code is shown without reflow.
// Struck-through text (the model's "~~wrong~~ right" notation) uses the
// theme's error color and bold text its success color.
func Render(source string, width int, theme proofread.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	src := []byte(source)
	r := newANSIRenderer(src, theme)
	var buf bytes.Buffer
	r.blocks(parse(src), width, &buf)
	return strings.TrimRight(buf.String(), "\n")
}

type ansiRenderer struct {
	source    []byte
	bold      lipgloss.Style
	italic    lipgloss.Style
	strike    lipgloss.Style
	code      lipgloss.Style
	heading   lipgloss.Style
	muted     lipgloss.Style
	underline lipgloss.Style
}

func newANSIRenderer(source []byte, theme proofread.Theme) *ansiRenderer {
	return &ansiRenderer{
		source:    source,
		bold:      lipgloss.NewStyle().Bold(true).Foreground(ansiColor(theme.Success)),
		italic:    lipgloss.NewStyle().Italic(true),
		strike:    lipgloss.NewStyle().Strikethrough(true).Foreground(ansiColor(theme.Error)),
		code:      lipgloss.NewStyle().Bold(true),
		heading:   lipgloss.NewStyle().Bold(true).Foreground(ansiColor(theme.Accent)),
		muted:     lipgloss.NewStyle().Faint(true).Foreground(ansiColor(theme.Muted)),
		underline: lipgloss.NewStyle().Underline(true),
	}
}

// ansiColor maps a theme index to a lipgloss color; negative means none.
func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func (r *ansiRenderer) blocks(node ast.Node, width int, buf *bytes.Buffer) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.block(c, width, buf)
		if c.NextSibling() != nil {
			buf.WriteString("\n")
		}
	}
}

func (r *ansiRenderer) block(node ast.Node, width int, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		buf.WriteString(wrap(r.inlines(n), width))
		buf.WriteString("\n")

	case *ast.Heading:
		buf.WriteString(wrap(r.heading.Render(r.inlines(n)), width))
		buf.WriteString("\n")

	case *ast.FencedCodeBlock:
		if lang := string(n.Language(r.source)); lang != "" {
			buf.WriteString(r.muted.Render(lang))
			buf.WriteString("\n")
		}
		r.gutter(n, buf)

	case *ast.CodeBlock:
		r.gutter(n, buf)

	case *ast.Blockquote:
		var inner bytes.Buffer
		r.blocks(n, max(width-2, 10), &inner)
		bar := r.muted.Render("▎") + " "
		for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
			buf.WriteString(bar + line + "\n")
		}

	case *ast.List:
		r.list(n, width, buf, 0)

	case *ast.ThematicBreak:
		buf.WriteString(r.muted.Render(strings.Repeat("─", min(width, 40))))
		buf.WriteString("\n")

	case *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(r.source))
		}

	default:
		r.blocks(n, width, buf)
	}
}

// gutter writes a code block's lines behind a muted bar, unwrapped.
func (r *ansiRenderer) gutter(node ast.Node, buf *bytes.Buffer) {
	bar := r.muted.Render("│") + " "
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.WriteString(bar + strings.TrimRight(string(seg.Value(r.source)), "\n") + "\n")
	}
}

func (r *ansiRenderer) list(node *ast.List, width int, buf *bytes.Buffer, depth int) {
	num := node.Start
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		indent := strings.Repeat("  ", depth)
		marker := "• "
		if node.IsOrdered() {
			marker = strconv.Itoa(num) + ". "
			num++
		}

		var text strings.Builder
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				text.WriteString(r.inlines(in))
			case *ast.List:
				if text.Len() > 0 {
					r.item(buf, indent+marker, text.String(), width)
					text.Reset()
				}
				r.list(in, width, buf, depth+1)
				// Further content of this item aligns with its text.
				marker = strings.Repeat(" ", len([]rune(marker)))
			default:
				var inner bytes.Buffer
				r.block(in, width, &inner)
				text.WriteString(strings.TrimRight(inner.String(), "\n"))
			}
		}
		if text.Len() > 0 {
			r.item(buf, indent+marker, text.String(), width)
		}
	}
}

// item writes one list item, indenting continuation lines under its text.
func (r *ansiRenderer) item(buf *bytes.Buffer, prefix, content string, width int) {
	pad := lipgloss.Width(prefix)
	lines := strings.Split(wrap(content, max(width-pad, 10)), "\n")
	for i, line := range lines {
		if i == 0 {
			buf.WriteString(prefix + line + "\n")
			continue
		}
		buf.WriteString(strings.Repeat(" ", pad) + line + "\n")
	}
}

func (r *ansiRenderer) inlines(node ast.Node) string {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.inline(c, &buf)
	}
	return buf.String()
}

func (r *ansiRenderer) inline(node ast.Node, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(r.source))
		switch {
		case n.HardLineBreak():
			buf.WriteByte('\n')
		case n.SoftLineBreak():
			buf.WriteByte(' ')
		}

	case *ast.String:
		buf.Write(n.Value)

	case *ast.Emphasis:
		if n.Level >= 2 {
			buf.WriteString(r.bold.Render(r.inlines(n)))
			return
		}
		buf.WriteString(r.italic.Render(r.inlines(n)))

	case *east.Strikethrough:
		buf.WriteString(r.strike.Render(r.inlines(n)))

	case *ast.CodeSpan:
		buf.WriteString(r.code.Render(r.inlines(n)))

	case *ast.Link:
		buf.WriteString(r.underline.Render(r.inlines(n)))
		buf.WriteString(" " + r.muted.Render("("+string(n.Destination)+")"))

	case *ast.AutoLink:
		buf.WriteString(r.underline.Render(string(n.URL(r.source))))

	case *ast.Image:
		buf.WriteString(r.underline.Render(r.inlines(n)))
		buf.WriteString(" " + r.muted.Render("("+string(n.Destination)+")"))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(r.source))
		}

	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			r.inline(c, buf)
		}
	}
}

func wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}
