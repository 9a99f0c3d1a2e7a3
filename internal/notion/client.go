package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultBaseURL = "https://api.notion.com"
	apiVersion     = "2022-06-28"
	pageSize       = 100
	defaultTimeout = 30 * time.Second
)

// Client talks to the remote document API. Search and child listing are the
// only two endpoints the sync engine needs; both are wrapped by the retry
// policy.
type Client struct {
	client  *http.Client
	baseURL string
	token   string
	retry   RetryPolicy
}

func NewClient(token string) *Client {
	return &Client{
		client:  &http.Client{Timeout: defaultTimeout},
		baseURL: defaultBaseURL,
		token:   token,
		retry:   DefaultRetryPolicy,
	}
}

// SetBaseURL points the client at a different endpoint. Used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

func (c *Client) SetRetryPolicy(policy RetryPolicy) {
	c.retry = policy
}

func (c *Client) SetTimeout(d time.Duration) {
	c.client.Timeout = d
}

// SearchPages returns every page the integration can see, newest edits
// first, following search pagination until exhausted. Filtering down to one
// database happens in the caller; the search endpoint cannot do it.
func (c *Client) SearchPages(ctx context.Context) ([]Page, error) {
	return withRetry(ctx, c.retry, "page search", func(ctx context.Context) ([]Page, error) {
		var pages []Page
		cursor := ""
		for {
			resp, err := c.searchOnce(ctx, cursor)
			if err != nil {
				return nil, err
			}
			pages = append(pages, resp.Results...)
			if !resp.HasMore || resp.NextCursor == "" {
				return pages, nil
			}
			cursor = resp.NextCursor
		}
	})
}

func (c *Client) searchOnce(ctx context.Context, cursor string) (*searchResponse, error) {
	body := map[string]any{
		"filter": map[string]string{"property": "object", "value": "page"},
		"sort":   map[string]string{"direction": "descending", "timestamp": "last_edited_time"},
	}
	if cursor != "" {
		body["start_cursor"] = cursor
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp searchResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("searching pages: %w", err)
	}
	return &resp, nil
}

// ListChildren fetches one page of a block's children. Cursor is empty for
// the first page; callers loop on HasMore/NextCursor.
func (c *Client) ListChildren(ctx context.Context, blockID, cursor string) (*BlockList, error) {
	return withRetry(ctx, c.retry, "block listing", func(ctx context.Context) (*BlockList, error) {
		endpoint := c.baseURL + "/v1/blocks/" + url.PathEscape(blockID) + "/children"
		query := url.Values{"page_size": {strconv.Itoa(pageSize)}}
		if cursor != "" {
			query.Set("start_cursor", cursor)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("creating listing request: %w", err)
		}

		var list BlockList
		if err := c.do(req, &list); err != nil {
			return nil, fmt.Errorf("listing children of %s: %w", blockID, err)
		}
		return &list, nil
	})
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// APIError is a non-2xx answer from the remote store.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("notion API error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("notion API error %d: %s", e.Status, e.Message)
}
