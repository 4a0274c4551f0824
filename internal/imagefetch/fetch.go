// Package imagefetch downloads remote images referenced by a document so
// renderers can embed them.
//
// Downloads run in parallel with a concurrency limit. A failed download never
// fails the batch: the image keeps its URL and no blob, and the renderer
// falls back to referencing the URL directly.
package imagefetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-docstyle/internal/fileutil"
	"github.com/alnah/go-docstyle/internal/ir"
)

// Defaults for the HTTP fetcher.
const (
	DefaultTimeout     = 15 * time.Second
	DefaultConcurrency = 4
	DefaultMaxBytes    = 20 << 20
)

// Sentinel errors for single image downloads.
var (
	ErrNotRemote   = errors.New("not an http(s) URL")
	ErrHTTPStatus  = errors.New("unexpected HTTP status")
	ErrTooLarge    = errors.New("image exceeds size limit")
	ErrEmptyBody   = errors.New("empty response body")
	ErrNotAnImage  = errors.New("response is not an image")
	ErrFetchFailed = errors.New("image fetch failed")
)

// Fetcher populates image blobs.
type Fetcher interface {
	// FetchAll returns a copy of images with blobs filled in where the
	// download succeeded. It only returns an error when ctx is cancelled.
	FetchAll(ctx context.Context, images []ir.ImageElement) ([]ir.ImageElement, error)
}

// HTTPFetcher downloads images over HTTP.
type HTTPFetcher struct {
	client      *http.Client
	concurrency int
	maxBytes    int64
	userAgent   string
	log         *zap.Logger
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithClient sets the HTTP client. The client's timeout bounds each download.
func WithClient(c *http.Client) Option {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithTimeout sets a per-download timeout on the default client.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.client = &http.Client{Timeout: d}
		}
	}
}

// WithConcurrency limits the number of simultaneous downloads.
func WithConcurrency(n int) Option {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithMaxBytes caps the size of a single image.
func WithMaxBytes(n int64) Option {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithLogger sets the logger used to report failed downloads.
func WithLogger(log *zap.Logger) Option {
	return func(f *HTTPFetcher) {
		if log != nil {
			f.log = log
		}
	}
}

// NewHTTPFetcher creates an HTTPFetcher with default settings.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:      &http.Client{Timeout: DefaultTimeout},
		concurrency: DefaultConcurrency,
		maxBytes:    DefaultMaxBytes,
		userAgent:   "go-docstyle",
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Compile-time interface check.
var _ Fetcher = (*HTTPFetcher)(nil)

// IsRemote reports whether url uses the http or https scheme.
func IsRemote(url string) bool {
	return fileutil.IsURL(url)
}

// FetchAll downloads every remote image that has no blob yet. Local paths,
// data URLs and images that already carry a blob are passed through.
func (f *HTTPFetcher) FetchAll(ctx context.Context, images []ir.ImageElement) ([]ir.ImageElement, error) {
	out := append([]ir.ImageElement(nil), images...)
	if len(out) == 0 {
		return out, nil
	}

	// Per-image errors are swallowed inside the goroutines, so the group
	// context only ends when the caller cancels.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i := range out {
		if out[i].HasBlob() || !IsRemote(out[i].URL) {
			continue
		}
		i := i
		g.Go(func() error {
			data, mimeType, err := f.Fetch(gctx, out[i].URL)
			if err != nil {
				f.log.Warn("image download failed, keeping URL",
					zap.String("url", out[i].URL),
					zap.Error(err))
				return nil
			}
			out[i].Blob = data
			out[i].MIMEType = mimeType
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Fetch downloads a single image and returns its bytes and MIME type.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	if !IsRemote(url) {
		return nil, "", fmt.Errorf("%w: %q", ErrNotRemote, url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSpace(url), nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, "", fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.maxBytes)
	}
	if len(data) == 0 {
		return nil, "", ErrEmptyBody
	}

	mimeType := detectMIME(resp.Header.Get("Content-Type"), data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", fmt.Errorf("%w: %s", ErrNotAnImage, mimeType)
	}
	return data, mimeType, nil
}

// detectMIME prefers the declared Content-Type and sniffs the body otherwise.
func detectMIME(header string, data []byte) string {
	if header != "" {
		if mt, _, err := mime.ParseMediaType(header); err == nil && strings.HasPrefix(mt, "image/") {
			return mt
		}
	}
	sniffed := http.DetectContentType(data)
	if mt, _, err := mime.ParseMediaType(sniffed); err == nil {
		return mt
	}
	return sniffed
}
