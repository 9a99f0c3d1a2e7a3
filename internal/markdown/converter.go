package markdown

import (
	"context"
	"strings"

	"github.com/yljiang/blogsync/internal/notion"
)

// maxDepth caps recursion into nested children. The remote store should
// never produce cycles, but a malformed parent reference must not hang a
// sync run; subtrees past the cap convert to nothing.
const maxDepth = 10

// ChildLister fetches one page of a block's children. Satisfied by
// *notion.Client; tests use an in-memory fake.
type ChildLister interface {
	ListChildren(ctx context.Context, blockID, cursor string) (*notion.BlockList, error)
}

// Converter walks a page's block tree depth-first and renders it as flat
// Markdown text.
type Converter struct {
	lister ChildLister
}

func NewConverter(lister ChildLister) *Converter {
	return &Converter{lister: lister}
}

// PageToMarkdown converts the whole block tree rooted at pageID. A listing
// failure anywhere in the tree fails the page; the synchronizer isolates it
// per document.
func (c *Converter) PageToMarkdown(ctx context.Context, pageID string) (string, error) {
	body, err := c.convertChildren(ctx, pageID, 0)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(body), nil
}

// convertChildren lists every page of blockID's children, converting each
// block in original order. The listing is paginated; the loop follows
// cursors until the store reports no more.
func (c *Converter) convertChildren(ctx context.Context, blockID string, depth int) (string, error) {
	if depth > maxDepth {
		return "", nil
	}

	var sb strings.Builder
	cursor := ""
	for {
		list, err := c.lister.ListChildren(ctx, blockID, cursor)
		if err != nil {
			return "", err
		}
		for i := range list.Results {
			fragment, err := c.convertBlock(ctx, &list.Results[i], depth)
			if err != nil {
				return "", err
			}
			sb.WriteString(fragment)
		}
		if !list.HasMore || list.NextCursor == "" {
			break
		}
		cursor = list.NextCursor
	}
	return sb.String(), nil
}

func (c *Converter) convertBlock(ctx context.Context, b *notion.Block, depth int) (string, error) {
	switch b.Type {
	case "paragraph":
		text := JoinRichText(b.Paragraph.RichText)
		if strings.TrimSpace(text) == "" {
			return "\n", nil
		}
		return text + "\n\n", nil

	case "heading_1":
		return "# " + JoinRichText(b.Heading1.RichText) + "\n\n", nil

	case "heading_2":
		return "## " + JoinRichText(b.Heading2.RichText) + "\n\n", nil

	case "heading_3":
		return "### " + JoinRichText(b.Heading3.RichText) + "\n\n", nil

	case "bulleted_list_item":
		return c.listItem(ctx, b, "- ", b.BulletedListItem.RichText, depth)

	case "numbered_list_item":
		// Always the literal "1."; Markdown renderers re-number.
		return c.listItem(ctx, b, "1. ", b.NumberedListItem.RichText, depth)

	case "to_do":
		marker := "- [ ] "
		if b.ToDo.Checked {
			marker = "- [x] "
		}
		return c.listItem(ctx, b, marker, b.ToDo.RichText, depth)

	case "quote":
		return "> " + JoinRichText(b.Quote.RichText) + "\n\n", nil

	case "code":
		return "```" + b.Code.Language + "\n" + PlainText(b.Code.RichText) + "\n```\n\n", nil

	case "divider":
		return "---\n\n", nil

	case "image":
		imageURL := b.Image.URL()
		if imageURL == "" {
			return "", nil
		}
		caption := PlainText(b.Image.Caption)
		return "![" + caption + "](" + imageURL + ")\n\n", nil

	case "callout":
		emoji := "💡"
		if b.Callout.Icon != nil && b.Callout.Icon.Emoji != "" {
			emoji = b.Callout.Icon.Emoji
		}
		return "> " + emoji + " " + JoinRichText(b.Callout.RichText) + "\n\n", nil

	case "toggle":
		var sb strings.Builder
		sb.WriteString("<details>\n<summary>" + JoinRichText(b.Toggle.RichText) + "</summary>\n\n")
		if b.HasChildren {
			child, err := c.convertChildren(ctx, b.ID, depth+1)
			if err != nil {
				return "", err
			}
			sb.WriteString(child)
		}
		sb.WriteString("\n</details>\n\n")
		return sb.String(), nil

	case "table":
		if !b.HasChildren {
			return "", nil
		}
		rows, err := c.convertChildren(ctx, b.ID, depth+1)
		if err != nil {
			return "", err
		}
		if rows == "" {
			return "", nil
		}
		return rows + "\n", nil

	case "table_row":
		cells := make([]string, len(b.TableRow.Cells))
		for i, cell := range b.TableRow.Cells {
			cells[i] = PlainText(cell)
		}
		return "| " + strings.Join(cells, " | ") + " |\n", nil

	default:
		// Unknown kinds contribute their children only, no marker.
		if b.HasChildren {
			return c.convertChildren(ctx, b.ID, depth+1)
		}
		return "", nil
	}
}

// listItem renders one list entry and, when the item has nested children,
// appends their converted output indented by two spaces.
func (c *Converter) listItem(ctx context.Context, b *notion.Block, marker string, spans []notion.RichText, depth int) (string, error) {
	line := marker + JoinRichText(spans) + "\n"
	if !b.HasChildren {
		return line, nil
	}

	child, err := c.convertChildren(ctx, b.ID, depth+1)
	if err != nil {
		return "", err
	}
	if child == "" {
		return line, nil
	}
	return line + indent(child, "  "), nil
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
