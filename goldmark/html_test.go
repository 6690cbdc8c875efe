package goldmark_test

import (
	"testing"

	"github.com/fwojciec/proofread/goldmark"
	"github.com/stretchr/testify/assert"
)

func TestTelegramHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"empty", "", ""},
		{"plain text", "I have a cat.", "I have a cat."},
		{"bold correction", "I **have** a cat.", "I <b>have</b> a cat."},
		{"italic", "*italic*", "<i>italic</i>"},
		{"strikethrough and bold", "~~has~~ **have**", "<s>has</s> <b>have</b>"},
		{"special characters escaped", "a < b & c > d", "a &lt; b &amp; c &gt; d"},
		{"inline code escaped", "`x := <nil>`", "<code>x := &lt;nil&gt;</code>"},
		{"fenced code with language", "```go\nfmt.Println(\"<hi>\")\n```", `<pre><code class="language-go">fmt.Println("&lt;hi&gt;")</code></pre>`},
		{"fenced code without language", "```\na < b\n```", "<pre>a &lt; b</pre>"},
		{"link", "[docs](https://example.com/?a=1&b=2)", `<a href="https://example.com/?a=1&amp;b=2">docs</a>`},
		{"bullet list", "- one\n- two", "• one\n• two"},
		{"ordered list", "1. first\n2. second", "1. first\n2. second"},
		{"nested list", "- outer\n  - inner", "• outer\n  • inner"},
		{"paragraphs", "first\n\nsecond", "first\n\nsecond"},
		{"heading", "# Title\n\nBody", "<b>Title</b>\n\nBody"},
		{"blockquote", "> quoted", "<blockquote>quoted</blockquote>"},
		{"soft line break kept", "line one\nline two", "line one\nline two"},
		{"raw html shown as text", "a <b>b</b>", "a &lt;b&gt;b&lt;/b&gt;"},
		{"unclosed emphasis stays literal", "I **hav", "I **hav"},
		{"streaming cursor", "I have▌", "I have▌"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, goldmark.TelegramHTML(tt.source))
		})
	}
}
