package notion

import (
	"strings"
	"time"
)

// UntitledName is the title placeholder for pages without a usable title
// property. It is part of the produced front matter, not a display string.
const UntitledName = "未命名"

// Candidate property names, checked in order. The blog's databases have
// been authored with both Chinese and English schemas over time.
var (
	titleKeys    = []string{"标题", "Title", "title", "Name", "name"}
	dateKeys     = []string{"发布日期", "Date", "date", "创建时间", "created_time"}
	categoryKeys = []string{"分类", "Category", "category"}
	tagKeys      = []string{"标签", "Tags", "tags"}
)

// Title resolves the page title from the first matching non-empty title
// property, falling back to UntitledName.
func (p *Page) Title() string {
	for _, key := range titleKeys {
		prop, ok := p.Properties[key]
		if !ok || prop.Type != "title" {
			continue
		}
		if len(prop.Title) > 0 && prop.Title[0].PlainText != "" {
			return prop.Title[0].PlainText
		}
	}
	return UntitledName
}

// PublishedAt resolves the article date: an explicit date property first,
// then a created/last-edited timestamp property, then the page's own
// creation time.
func (p *Page) PublishedAt() time.Time {
	for _, key := range dateKeys {
		prop, ok := p.Properties[key]
		if !ok {
			continue
		}
		switch prop.Type {
		case "date":
			if prop.Date != nil && prop.Date.Start != "" {
				if t, err := parseDate(prop.Date.Start); err == nil {
					return t
				}
			}
		case "created_time":
			if t, err := parseDate(prop.CreatedTime); err == nil {
				return t
			}
		case "last_edited_time":
			if t, err := parseDate(prop.LastEditedTime); err == nil {
				return t
			}
		}
	}
	return p.CreatedTime
}

// Category resolves the single select category, empty when unset.
func (p *Page) Category() string {
	for _, key := range categoryKeys {
		prop, ok := p.Properties[key]
		if !ok || prop.Type != "select" {
			continue
		}
		if prop.Select != nil && prop.Select.Name != "" {
			return prop.Select.Name
		}
	}
	return ""
}

// Tags resolves the multi-select tag list; nil when unset or empty.
func (p *Page) Tags() []string {
	for _, key := range tagKeys {
		prop, ok := p.Properties[key]
		if !ok || prop.Type != "multi_select" {
			continue
		}
		if len(prop.MultiSelect) == 0 {
			continue
		}
		tags := make([]string, 0, len(prop.MultiSelect))
		for _, v := range prop.MultiSelect {
			if v.Name != "" {
				tags = append(tags, v.Name)
			}
		}
		if len(tags) > 0 {
			return tags
		}
	}
	return nil
}

// InDatabase reports whether the page belongs to the given collection.
// Older API payloads carry database_id without the tagged parent type.
func (p *Page) InDatabase(databaseID string) bool {
	if p.Parent.DatabaseID == "" {
		return false
	}
	return p.Parent.DatabaseID == databaseID
}

// NormalizeDatabaseID hyphenates a bare 32-character database id into the
// 8-4-4-4-12 form the API reports in parent references.
func NormalizeDatabaseID(id string) string {
	if strings.Contains(id, "-") || len(id) != 32 {
		return id
	}
	return id[0:8] + "-" + id[8:12] + "-" + id[12:16] + "-" + id[16:20] + "-" + id[20:32]
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
