package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"time"

	"github.com/yljiang/blogsync/internal/debuglog"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultExtension = ".jpg"
)

var (
	// Markdown image constructs with an absolute http(s) target.
	imagePattern = regexp.MustCompile(`!\[([^\]]*)\]\((https?://[^)\s]+)\)`)
	unsafeIDChar = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
)

// Localizer downloads remote images once and rewrites article bodies to
// reference the local copies. Hosted image URLs from the remote store are
// signed and expire, so every body must be rewritten before it is saved.
type Localizer struct {
	client     *http.Client
	dir        string
	publicPath string
}

// NewLocalizer creates the target directory up front; a missing directory
// is a fatal filesystem error, not something to discover mid-download.
func NewLocalizer(dir, publicPath string) (*Localizer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating image directory: %w", err)
	}
	return &Localizer{
		client:     &http.Client{Timeout: defaultTimeout},
		dir:        dir,
		publicPath: publicPath,
	}, nil
}

// SetHTTPClient replaces the download client. Used by tests.
func (l *Localizer) SetHTTPClient(client *http.Client) {
	l.client = client
}

// Localize ensures a local copy of remoteURL exists for (articleID, index)
// and returns its public reference. Any failure is soft: the original URL
// comes back unchanged and the article still saves.
func (l *Localizer) Localize(ctx context.Context, remoteURL, articleID string, index int) string {
	u, err := url.Parse(remoteURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return remoteURL
	}

	ext := path.Ext(u.Path)
	if ext == "" {
		ext = defaultExtension
	}

	safeID := unsafeIDChar.ReplaceAllString(articleID, "")
	if safeID == "" {
		safeID = "article"
	}

	name := fmt.Sprintf("%s-%d%s", safeID, index, ext)
	target := filepath.Join(l.dir, name)
	local := l.publicPath + "/" + name

	// An existing non-empty file is the cache hit; never re-fetch it.
	if info, err := os.Stat(target); err == nil && info.Size() > 0 {
		return local
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		debuglog.Warnf("image request for %s: %v", remoteURL, err)
		return remoteURL
	}

	resp, err := l.client.Do(req)
	if err != nil {
		debuglog.Warnf("image download %s: %v", remoteURL, err)
		return remoteURL
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		debuglog.Warnf("image download %s: HTTP %d, keeping remote link", remoteURL, resp.StatusCode)
		return remoteURL
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		debuglog.Warnf("image download %s: %v", remoteURL, err)
		return remoteURL
	}

	if err := os.WriteFile(target, data, 0o644); err != nil {
		debuglog.Errorf("writing image %s: %v", target, err)
		return remoteURL
	}

	debuglog.Infof("localized image %s -> %s (%d bytes)", remoteURL, name, len(data))
	return local
}

// LocalizeAll rewrites every remote image link in body, assigning indexes
// in first-seen order starting at 1. Alt text is preserved verbatim.
func (l *Localizer) LocalizeAll(ctx context.Context, body, articleID string) string {
	index := 0
	return imagePattern.ReplaceAllStringFunc(body, func(match string) string {
		parts := imagePattern.FindStringSubmatch(match)
		if parts == nil {
			return match
		}
		index++
		local := l.Localize(ctx, parts[2], articleID, index)
		return "![" + parts[1] + "](" + local + ")"
	})
}
