package article

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"
)

// Article is one local Markdown article: front matter fields plus body.
// ID doubles as the file base name and the permalink, so it must stay
// stable across updates of the same remote document.
type Article struct {
	ID       string
	Title    string
	Date     string
	ReadTime string
	Category string
	Tags     []string
	Body     string
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID generates a fresh article id: millisecond timestamp plus a random
// base36 suffix, matching the ids already published by the blog.
func NewID() string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = idAlphabet[rand.Intn(len(idAlphabet))]
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), suffix)
}

// FormatDate renders a timestamp as the calendar string the display layer
// parses, e.g. 2025年1月1日. Other pages split on the CJK separators, so
// this exact format is a contract, not cosmetics.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d年%d月%d日", t.Year(), int(t.Month()), t.Day())
}

// ReadTime estimates reading time from the converted body: one minute per
// 300 non-whitespace runes, rounded up.
func ReadTime(body string) string {
	count := 0
	for _, r := range body {
		if !unicode.IsSpace(r) {
			count++
		}
	}
	minutes := (count + 299) / 300
	return fmt.Sprintf("%d 分钟", minutes)
}

// FrontMatter renders the article's YAML header. Category and tags are
// omitted entirely when absent; tags serialize as a comma-separated list.
func (a *Article) FrontMatter() string {
	var sb strings.Builder
	sb.WriteString("---\n")
	sb.WriteString("title: " + escapeYAMLValue(a.Title) + "\n")
	sb.WriteString("date: " + escapeYAMLValue(a.Date) + "\n")
	sb.WriteString("readTime: " + a.ReadTime + "\n")
	if a.Category != "" {
		sb.WriteString("category: " + escapeYAMLValue(a.Category) + "\n")
	}
	if len(a.Tags) > 0 {
		sb.WriteString("tags: " + strings.Join(a.Tags, ", ") + "\n")
	}
	sb.WriteString("---\n\n")
	return sb.String()
}

// Render returns the full file content: front matter followed by the body.
func (a *Article) Render() string {
	return a.FrontMatter() + a.Body
}

func escapeYAMLValue(value string) string {
	if strings.ContainsAny(value, ":\n\"") {
		return `"` + strings.ReplaceAll(value, `"`, `\"`) + `"`
	}
	return value
}
