package notion

import "time"

// Block is one node in a page's content tree. The payload field matching
// Type is set; all others are nil. Children are never embedded, they are
// fetched through ListChildren keyed by ID.
type Block struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children"`

	Paragraph        *RichTextPayload `json:"paragraph,omitempty"`
	Heading1         *RichTextPayload `json:"heading_1,omitempty"`
	Heading2         *RichTextPayload `json:"heading_2,omitempty"`
	Heading3         *RichTextPayload `json:"heading_3,omitempty"`
	BulletedListItem *RichTextPayload `json:"bulleted_list_item,omitempty"`
	NumberedListItem *RichTextPayload `json:"numbered_list_item,omitempty"`
	Quote            *RichTextPayload `json:"quote,omitempty"`
	Toggle           *RichTextPayload `json:"toggle,omitempty"`
	Callout          *CalloutPayload  `json:"callout,omitempty"`
	ToDo             *ToDoPayload     `json:"to_do,omitempty"`
	Code             *CodePayload     `json:"code,omitempty"`
	Image            *ImagePayload    `json:"image,omitempty"`
	TableRow         *TableRowPayload `json:"table_row,omitempty"`
}

type RichTextPayload struct {
	RichText []RichText `json:"rich_text"`
}

type CalloutPayload struct {
	RichText []RichText `json:"rich_text"`
	Icon     *Icon      `json:"icon,omitempty"`
}

type Icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

type ToDoPayload struct {
	RichText []RichText `json:"rich_text"`
	Checked  bool       `json:"checked"`
}

type CodePayload struct {
	RichText []RichText `json:"rich_text"`
	Language string     `json:"language"`
}

type ImagePayload struct {
	Type     string       `json:"type"`
	File     *FileRef     `json:"file,omitempty"`
	External *ExternalRef `json:"external,omitempty"`
	Caption  []RichText   `json:"caption,omitempty"`
}

// URL returns the hosted-file URL when present, the external URL otherwise.
// Hosted URLs are signed and expire, which is why the localizer rewrites them.
func (p *ImagePayload) URL() string {
	if p.File != nil && p.File.URL != "" {
		return p.File.URL
	}
	if p.External != nil {
		return p.External.URL
	}
	return ""
}

type FileRef struct {
	URL        string    `json:"url"`
	ExpiryTime time.Time `json:"expiry_time,omitempty"`
}

type ExternalRef struct {
	URL string `json:"url"`
}

type TableRowPayload struct {
	Cells [][]RichText `json:"cells"`
}

// RichText is a single styled text span.
type RichText struct {
	Type        string      `json:"type,omitempty"`
	PlainText   string      `json:"plain_text"`
	Href        string      `json:"href,omitempty"`
	Annotations Annotations `json:"annotations"`
}

type Annotations struct {
	Bold          bool   `json:"bold"`
	Italic        bool   `json:"italic"`
	Strikethrough bool   `json:"strikethrough"`
	Underline     bool   `json:"underline"`
	Code          bool   `json:"code"`
	Color         string `json:"color,omitempty"`
}

// BlockList is one page of a block's children.
type BlockList struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor string  `json:"next_cursor"`
}

// Page is a remote document. Read-only from our side.
type Page struct {
	ID             string              `json:"id"`
	CreatedTime    time.Time           `json:"created_time"`
	LastEditedTime time.Time           `json:"last_edited_time"`
	Archived       bool                `json:"archived"`
	Parent         Parent              `json:"parent"`
	Properties     map[string]Property `json:"properties"`
}

type Parent struct {
	Type       string `json:"type"`
	DatabaseID string `json:"database_id,omitempty"`
}

// Property is a loosely-typed page property; Type selects the populated field.
type Property struct {
	Type           string        `json:"type"`
	Title          []RichText    `json:"title,omitempty"`
	Date           *DateValue    `json:"date,omitempty"`
	Select         *SelectValue  `json:"select,omitempty"`
	MultiSelect    []SelectValue `json:"multi_select,omitempty"`
	CreatedTime    string        `json:"created_time,omitempty"`
	LastEditedTime string        `json:"last_edited_time,omitempty"`
}

type DateValue struct {
	Start string `json:"start"`
}

type SelectValue struct {
	Name string `json:"name"`
}

type searchResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}
