package fetcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/crateful/unbox/internal/domain"
)

type HTTPFetcher struct {
	client    *http.Client
	outputDir string
}

func New(outputDir string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		outputDir: outputDir,
	}
}

// Fetch downloads a remote archive into the output directory and returns
// its local path. The file keeps the URL's base name so format detection
// can use the extension hint.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) domain.FetchResult {
	dst := filepath.Join(f.outputDir, fileNameFromURL(rawURL))

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return domain.FetchResult{URL: rawURL, Error: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.FetchResult{URL: rawURL, Error: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.FetchResult{URL: rawURL, Error: fmt.Errorf("unexpected status: %d", resp.StatusCode)}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return domain.FetchResult{URL: rawURL, Error: err}
	}

	file, err := os.Create(dst)
	if err != nil {
		return domain.FetchResult{URL: rawURL, Error: err}
	}
	defer file.Close()

	bar := progressbar.DefaultBytes(
		resp.ContentLength,
		fmt.Sprintf("Downloading %s", path.Base(dst)),
	)

	if _, err := io.Copy(io.MultiWriter(file, bar), resp.Body); err != nil {
		return domain.FetchResult{URL: rawURL, Error: err}
	}

	return domain.FetchResult{URL: rawURL, Path: dst}
}

// Key derives the cache key for a URL.
func Key(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:16])
}

func fileNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || path.Base(u.Path) == "/" || path.Base(u.Path) == "." {
		return "archive"
	}
	return path.Base(u.Path)
}
