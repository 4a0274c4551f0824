package imagefetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alnah/go-docstyle/internal/ir"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngHeader)
	})
	mux.HandleFunc("/sniffed", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(pngHeader)
	})
	mux.HandleFunc("/missing.png", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/page.html", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	})
	mux.HandleFunc("/big.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(make([]byte, 2048))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestIsRemote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want bool
	}{
		{"http://example.com/a.png", true},
		{"HTTPS://example.com/a.png", true},
		{"  https://example.com/a.png", true},
		{"data:image/png;base64,AAAA", false},
		{"images/a.png", false},
		{"/abs/a.png", false},
		{"ftp://example.com/a.png", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsRemote(tt.url); got != tt.want {
			t.Errorf("IsRemote(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestFetchAll_DegradesPerImage(t *testing.T) {
	t.Parallel()

	srv := newImageServer(t)
	images := []ir.ImageElement{
		{URL: srv.URL + "/ok.png", Alt: "ok"},
		{URL: srv.URL + "/missing.png", Alt: "missing"},
		{URL: "data:image/png;base64,AAAA", Alt: "inline"},
		{URL: "local/file.png", Alt: "local"},
		{URL: srv.URL + "/page.html", Alt: "html"},
		{URL: "http://127.0.0.1:1/unreachable.png", Alt: "down"},
		{URL: srv.URL + "/sniffed", Alt: "sniffed"},
	}

	got, err := NewHTTPFetcher(WithTimeout(5*time.Second)).FetchAll(context.Background(), images)
	if err != nil {
		t.Fatalf("FetchAll() unexpected error: %v", err)
	}
	if len(got) != len(images) {
		t.Fatalf("got %d images, want %d", len(got), len(images))
	}

	wantBlob := map[string]bool{"ok": true, "sniffed": true}
	for i, img := range got {
		if img.URL != images[i].URL || img.Alt != images[i].Alt {
			t.Errorf("image %d changed identity: %+v", i, img)
		}
		if img.HasBlob() != wantBlob[img.Alt] {
			t.Errorf("image %q HasBlob = %v, want %v", img.Alt, img.HasBlob(), wantBlob[img.Alt])
		}
		if img.HasBlob() && img.MIMEType != "image/png" {
			t.Errorf("image %q MIMEType = %q", img.Alt, img.MIMEType)
		}
	}

	for _, img := range images {
		if img.HasBlob() {
			t.Error("FetchAll mutated its input slice")
		}
	}
}

func TestFetchAll_SkipsImagesWithBlob(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngHeader)
	}))
	t.Cleanup(srv.Close)

	images := []ir.ImageElement{{URL: srv.URL + "/a.png", Blob: []byte("cached"), MIMEType: "image/png"}}
	got, err := NewHTTPFetcher().FetchAll(context.Background(), images)
	if err != nil {
		t.Fatalf("FetchAll() unexpected error: %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("server hit %d times, want 0", hits.Load())
	}
	if string(got[0].Blob) != "cached" {
		t.Errorf("blob = %q, want cached", got[0].Blob)
	}
}

func TestFetchAll_ConcurrencyLimit(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngHeader)
	}))
	t.Cleanup(srv.Close)

	images := make([]ir.ImageElement, 8)
	for i := range images {
		images[i] = ir.ImageElement{URL: srv.URL + "/img.png"}
	}

	got, err := NewHTTPFetcher(WithConcurrency(2)).FetchAll(context.Background(), images)
	if err != nil {
		t.Fatalf("FetchAll() unexpected error: %v", err)
	}
	for i, img := range got {
		if !img.HasBlob() {
			t.Errorf("image %d has no blob", i)
		}
	}
	if p := peak.Load(); p > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", p)
	}
}

func TestFetchAll_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPFetcher().FetchAll(ctx, []ir.ImageElement{{URL: "http://example.com/a.png"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("FetchAll() error = %v, want context.Canceled", err)
	}
}

func TestFetch_Errors(t *testing.T) {
	t.Parallel()

	srv := newImageServer(t)
	f := NewHTTPFetcher(WithMaxBytes(1024))

	tests := []struct {
		name string
		url  string
		want error
	}{
		{"not remote", "file.png", ErrNotRemote},
		{"404", srv.URL + "/missing.png", ErrHTTPStatus},
		{"html body", srv.URL + "/page.html", ErrNotAnImage},
		{"too large", srv.URL + "/big.png", ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, _, err := f.Fetch(context.Background(), tt.url); !errors.Is(err, tt.want) {
				t.Errorf("Fetch(%q) error = %v, want %v", tt.url, err, tt.want)
			}
		})
	}
}
