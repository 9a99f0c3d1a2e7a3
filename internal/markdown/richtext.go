package markdown

import (
	"strings"

	"github.com/yljiang/blogsync/internal/notion"
)

// FormatRichText converts one styled span to inline Markdown. Marks nest in
// a fixed order so output is stable: code innermost, then bold, italic,
// strikethrough, underline, with the link wrapper outermost.
//
// Plain text is emitted as-is; published articles were produced without
// escaping Markdown metacharacters and the body is a compatibility contract.
func FormatRichText(t notion.RichText) string {
	text := t.PlainText

	if t.Annotations.Code {
		text = "`" + text + "`"
	}
	if t.Annotations.Bold {
		text = "**" + text + "**"
	}
	if t.Annotations.Italic {
		text = "*" + text + "*"
	}
	if t.Annotations.Strikethrough {
		text = "~~" + text + "~~"
	}
	if t.Annotations.Underline {
		text = "<u>" + text + "</u>"
	}

	if t.Href != "" {
		text = "[" + text + "](" + t.Href + ")"
	}

	return text
}

// JoinRichText formats and concatenates a span sequence.
func JoinRichText(spans []notion.RichText) string {
	var sb strings.Builder
	for _, span := range spans {
		sb.WriteString(FormatRichText(span))
	}
	return sb.String()
}

// PlainText concatenates span text without any formatting. Used for code
// fences and table cells, where inline marks would corrupt the output.
func PlainText(spans []notion.RichText) string {
	var sb strings.Builder
	for _, span := range spans {
		sb.WriteString(span.PlainText)
	}
	return sb.String()
}
