package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalizer(t *testing.T) *Localizer {
	t.Helper()
	l, err := NewLocalizer(t.TempDir(), "/images/articles")
	require.NoError(t, err)
	return l
}

func TestLocalizeDownloadsAndRenames(t *testing.T) {
	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	l := newTestLocalizer(t)

	local := l.Localize(context.Background(), srv.URL+"/photo.png", "1736899200000-abc123def", 1)
	assert.Equal(t, "/images/articles/1736899200000-abc123def-1.png", local)
	assert.Equal(t, int32(1), fetches.Load())

	data, err := os.ReadFile(filepath.Join(l.dir, "1736899200000-abc123def-1.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestLocalizeCachesExistingFile(t *testing.T) {
	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Write([]byte("img"))
	}))
	defer srv.Close()

	l := newTestLocalizer(t)

	first := l.Localize(context.Background(), srv.URL+"/a.jpg", "art1", 1)
	second := l.Localize(context.Background(), srv.URL+"/a.jpg", "art1", 1)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), fetches.Load(), "second call must hit the disk cache")
}

func TestLocalizeRetriesEmptyCachedFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("real content"))
	}))
	defer srv.Close()

	l := newTestLocalizer(t)

	// A zero-byte file is a previous failed download, not a cache hit.
	require.NoError(t, os.WriteFile(filepath.Join(l.dir, "art1-1.jpg"), nil, 0o644))

	local := l.Localize(context.Background(), srv.URL+"/a.jpg", "art1", 1)
	assert.Equal(t, "/images/articles/art1-1.jpg", local)

	data, err := os.ReadFile(filepath.Join(l.dir, "art1-1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "real content", string(data))
}

func TestLocalizeFailuresKeepRemoteURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	l := newTestLocalizer(t)

	remote := srv.URL + "/gone.png"
	assert.Equal(t, remote, l.Localize(context.Background(), remote, "art1", 1))

	_, err := os.Stat(filepath.Join(l.dir, "art1-1.png"))
	assert.True(t, os.IsNotExist(err), "no file should be written on HTTP failure")
}

func TestLocalizeSkipsNonHTTPTargets(t *testing.T) {
	l := newTestLocalizer(t)

	for _, target := range []string{"/images/articles/already-local.png", "data:image/png;base64,AAAA"} {
		assert.Equal(t, target, l.Localize(context.Background(), target, "art1", 1))
	}
}

func TestLocalizeDefaultsExtension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("img"))
	}))
	defer srv.Close()

	l := newTestLocalizer(t)

	local := l.Localize(context.Background(), srv.URL+"/download", "art1", 2)
	assert.Equal(t, "/images/articles/art1-2.jpg", local)
}

func TestLocalizeSanitizesArticleID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("img"))
	}))
	defer srv.Close()

	l := newTestLocalizer(t)

	local := l.Localize(context.Background(), srv.URL+"/x.png", "../../etc/passwd", 1)
	assert.Equal(t, "/images/articles/etcpasswd-1.png", local)
}

func TestLocalizeAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("img"))
	}))
	defer srv.Close()

	l := newTestLocalizer(t)

	body := "intro\n\n" +
		"![first shot](" + srv.URL + "/one.png)\n\n" +
		"middle text\n\n" +
		"![](" + srv.URL + "/two.gif)\n\n" +
		"![local](/images/articles/keep-1.png)\n"

	got := l.LocalizeAll(context.Background(), body, "art9")

	want := "intro\n\n" +
		"![first shot](/images/articles/art9-1.png)\n\n" +
		"middle text\n\n" +
		"![](/images/articles/art9-2.gif)\n\n" +
		"![local](/images/articles/keep-1.png)\n"
	assert.Equal(t, want, got)
}
