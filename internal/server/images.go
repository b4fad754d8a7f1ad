package server

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// ImageCache downloads channel logos once and serves them from local disk so
// clients never hit the upstream CDN directly.
type ImageCache struct {
	dir    string
	client *http.Client
}

// NewImageCache creates the cache directory if needed.
func NewImageCache(dir string) (*ImageCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "imagecache: create dir %s", dir)
	}
	return &ImageCache{
		dir:    dir,
		client: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Dir returns the on-disk cache directory.
func (c *ImageCache) Dir() string { return c.dir }

// Fetch downloads the image at rawURL keyed by id and returns the local serve
// path under /cache/. Already-cached images are not re-downloaded. Any failure
// returns an error and the caller should fall back to the remote URL.
func (c *ImageCache) Fetch(ctx context.Context, id, rawURL string) (string, error) {
	if id == "" || rawURL == "" {
		return "", eris.New("imagecache: id and url are required")
	}

	name := unsafeFilenameChars.ReplaceAllString(id, "_") + c.extension(rawURL)
	local := filepath.Join(c.dir, name)

	if st, err := os.Stat(local); err == nil && st.Size() > 0 {
		return "/cache/" + name, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "imagecache: build request")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "imagecache: download")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("imagecache: download returned status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(c.dir, name+".tmp-*")
	if err != nil {
		return "", eris.Wrap(err, "imagecache: create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", eris.Wrap(err, "imagecache: write image")
	}
	if err := tmp.Close(); err != nil {
		return "", eris.Wrap(err, "imagecache: close temp file")
	}
	if err := os.Rename(tmp.Name(), local); err != nil {
		return "", eris.Wrap(err, "imagecache: move into place")
	}

	zap.L().Debug("imagecache: stored logo", zap.String("id", id), zap.String("file", name))
	return "/cache/" + name, nil
}

func (c *ImageCache) extension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ".jpg"
	}
	if ext := path.Ext(u.Path); ext != "" {
		return ext
	}
	return ".jpg"
}
