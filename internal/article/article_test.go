package article

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewIDShape(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{13}-[0-9a-z]{9}$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := NewID()
		assert.Regexp(t, pattern, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 1, "ids must not collide trivially")
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), "2025年1月15日"},
		{time.Date(2024, 12, 1, 23, 59, 0, 0, time.UTC), "2024年12月1日"},
		{time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC), "2023年6月30日"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDate(tt.in))
	}
}

func TestReadTime(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"single char", "x", "1 分钟"},
		{"exactly one minute", strings.Repeat("字", 300), "1 分钟"},
		{"one over rounds up", strings.Repeat("字", 301), "2 分钟"},
		{"whitespace does not count", strings.Repeat("字 ", 300), "1 分钟"},
		{"mixed cjk and latin", strings.Repeat("Go语言", 150), "2 分钟"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReadTime(tt.body))
		})
	}
}

func TestFrontMatterFull(t *testing.T) {
	a := &Article{
		ID:       "1736899200000-abc123def",
		Title:    "深入浅出 Go 并发",
		Date:     "2025年1月15日",
		ReadTime: "5 分钟",
		Category: "技术",
		Tags:     []string{"Go", "并发"},
	}

	want := "---\n" +
		"title: 深入浅出 Go 并发\n" +
		"date: 2025年1月15日\n" +
		"readTime: 5 分钟\n" +
		"category: 技术\n" +
		"tags: Go, 并发\n" +
		"---\n\n"
	assert.Equal(t, want, a.FrontMatter())
}

func TestFrontMatterOmitsEmptyFields(t *testing.T) {
	a := &Article{
		Title:    "Untagged",
		Date:     "2025年1月15日",
		ReadTime: "1 分钟",
	}

	fm := a.FrontMatter()
	assert.NotContains(t, fm, "category:")
	assert.NotContains(t, fm, "tags:")
}

func TestFrontMatterQuotesSpecialValues(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"colon forces quoting", "Go: The Good Parts", `title: "Go: The Good Parts"` + "\n"},
		{"inner quotes escaped", `He said "go"`, `title: "He said \"go\""` + "\n"},
		{"plain stays bare", "Plain Title", "title: Plain Title\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Article{Title: tt.title, Date: "2025年1月1日", ReadTime: "1 分钟"}
			assert.Contains(t, a.FrontMatter(), tt.want)
		})
	}
}

// The header must stay loadable by any YAML consumer, not only our own
// reader.
func TestFrontMatterIsValidYAML(t *testing.T) {
	a := &Article{
		Title:    `Tricky: "quoted" title`,
		Date:     "2025年1月15日",
		ReadTime: "3 分钟",
		Category: "技术",
		Tags:     []string{"Go", "测试"},
	}

	fm := a.FrontMatter()
	block := strings.TrimSuffix(strings.TrimPrefix(fm, "---\n"), "---\n\n")

	var parsed map[string]string
	require.NoError(t, yaml.Unmarshal([]byte(block), &parsed))
	assert.Equal(t, `Tricky: "quoted" title`, parsed["title"])
	assert.Equal(t, "2025年1月15日", parsed["date"])
	assert.Equal(t, "Go, 测试", parsed["tags"])
}

func TestRender(t *testing.T) {
	a := &Article{
		Title:    "T",
		Date:     "2025年1月1日",
		ReadTime: "1 分钟",
		Body:     "# Heading\n\ntext",
	}

	out := a.Render()
	assert.True(t, strings.HasPrefix(out, "---\n"))
	assert.True(t, strings.HasSuffix(out, "# Heading\n\ntext"))
}
