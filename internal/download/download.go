package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/pkg/browser"
	"github.com/samber/lo"
)

const (
	chunkSize    = 64 * 1024
	fallbackName = "download"
	fallbackExt  = ".bin"
	userAgent    = "image-downloader/1.0"
)

// Extensions for the common image subtypes. mime.ExtensionsByType covers the
// rest but prefers oddballs like ".jpe" for image/jpeg.
var imageExts = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Tagger stamps metadata into a saved file; failures are reported, never
// returned.
type Tagger interface {
	Tag(path string) bool
}

// Params control one batch download.
type Params struct {
	URLs   []string
	Prefix string // optional; filenames become <prefix>-<n>-<stem><ext>
	Dir    string // target directory, created if missing
	Open   bool   // open each saved file with the system default handler
}

// Downloader fetches generated images to local files, one URL at a time.
type Downloader struct {
	Client *http.Client // carries the connect/read timeouts
	Tagger Tagger
	Out    io.Writer // user-visible progress, default stdout
}

// SaveAll downloads each URL in order into params.Dir. Failures are isolated
// per URL: a bad fetch, a non-image response, or a filesystem error is
// reported and the batch continues. The returned paths cover only the files
// actually saved, in input order.
func (d *Downloader) SaveAll(ctx context.Context, params Params) ([]string, error) {
	if err := os.MkdirAll(params.Dir, 0o755); err != nil {
		return nil, err
	}

	saved := make([]string, 0, len(params.URLs))
	for idx, u := range params.URLs {
		p, err := d.saveOne(ctx, u, params, idx+1)
		if err != nil {
			fmt.Fprintf(d.out(), "Failed to download %s: %v\n", u, err)
			continue
		}
		if p == "" {
			continue // skipped, reason already printed
		}
		saved = append(saved, p)
		fmt.Fprintf(d.out(), "Saved %s\n", p)

		if params.Open {
			if err := browser.OpenFile(p); err != nil {
				logr.FromContextOrDiscard(ctx).Error(err, "opening saved file", "path", p)
			}
		}
	}
	return saved, nil
}

func (d *Downloader) saveOne(ctx context.Context, rawURL string, params Params, idx int) (string, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("url", rawURL)

	stem, ext := splitName(candidateName(rawURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	client := lo.Ternary(d.Client != nil, d.Client, http.DefaultClient)
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	ctype := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ctype), "image/") {
		fmt.Fprintf(d.out(), "Skip non-image content for %s (Content-Type=%s)\n",
			rawURL, lo.Ternary(ctype != "", ctype, "unknown"))
		return "", nil
	}

	if ext == "" {
		ext = extFromContentType(ctype)
	}

	name := lo.Ternary(params.Prefix != "",
		fmt.Sprintf("%s-%d-%s%s", params.Prefix, idx, stem, ext),
		stem+ext)
	target := uniquePath(filepath.Join(params.Dir, name))

	f, err := os.Create(target)
	if err != nil {
		return "", err
	}
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(f, resp.Body, buf); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	if d.Tagger != nil && !d.Tagger.Tag(target) {
		fmt.Fprintf(d.out(), "Warning: failed to set EXIF for %s\n", target)
	}

	log.Info("saved image", "path", target)
	return target, nil
}

// candidateName keeps only the decoded final path segment of the URL so a
// hostile URL cannot place a file outside the target directory.
func candidateName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallbackName
	}
	name := path.Base(u.Path)
	switch name {
	case "", "/", ".", "..":
		return fallbackName
	}
	return name
}

func splitName(name string) (string, string) {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}

func extFromContentType(ctype string) string {
	mt := strings.ToLower(strings.TrimSpace(strings.Split(ctype, ";")[0]))
	if ext, ok := imageExts[mt]; ok {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(mt); len(exts) > 0 {
		return exts[0]
	}
	return fallbackExt
}

// uniquePath appends -1, -2, ... before the extension until no existing file
// matches. Safe only against sequential runs; concurrent processes racing on
// the same directory are out of scope.
func uniquePath(base string) string {
	if _, err := os.Stat(base); errors.Is(err, fs.ErrNotExist) {
		return base
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if _, err := os.Stat(candidate); errors.Is(err, fs.ErrNotExist) {
			return candidate
		}
	}
}

func (d *Downloader) out() io.Writer {
	if d.Out != nil {
		return d.Out
	}
	return os.Stdout
}
