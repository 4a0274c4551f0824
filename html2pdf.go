package docstyle

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/alnah/go-docstyle/internal/fileutil"
	"github.com/alnah/go-docstyle/internal/process"
)

// pdfConverter abstracts HTML to PDF conversion to allow different backends.
type pdfConverter interface {
	ToPDF(ctx context.Context, htmlContent string, opts *pdfOptions) ([]byte, error)
	Close() error
}

// pageCapturer renders HTML to one PNG image per printed page.
type pageCapturer interface {
	Capture(ctx context.Context, htmlContent string, opts *pdfOptions, maxPages int) ([][]byte, error)
}

// pdfRenderer abstracts rendering from an HTML file to enable testing without a browser.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string, opts *pdfOptions) ([]byte, error)
	CaptureFromFile(ctx context.Context, filePath string, opts *pdfOptions, maxPages int) ([][]byte, error)
}

// Compile-time interface checks
var (
	_ pdfConverter = (*rodConverter)(nil)
	_ pageCapturer = (*rodConverter)(nil)
	_ pdfRenderer  = (*rodRenderer)(nil)
)

// cssPixelsPerInch is the CSS reference pixel density.
const cssPixelsPerInch = 96

// pdfOptions holds page geometry in inches.
type pdfOptions struct {
	PaperWidth  float64
	PaperHeight float64
	Margin      float64
}

// pdfOptionsFor derives print geometry from a layout.
func pdfOptionsFor(cfg LayoutConfig) (*pdfOptions, error) {
	w, h := cfg.PageInches()
	m, err := cfg.MarginInches()
	if err != nil {
		return nil, err
	}
	return &pdfOptions{PaperWidth: w, PaperHeight: h, Margin: m}, nil
}

// viewport returns the page size in CSS pixels.
func (o *pdfOptions) viewport() (width, height int) {
	return int(math.Round(o.PaperWidth * cssPixelsPerInch)), int(math.Round(o.PaperHeight * cssPixelsPerInch))
}

// rodRenderer implements pdfRenderer using go-rod.
// Rod automatically downloads Chromium on first run if not found.
type rodRenderer struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
	log      *zap.Logger
}

// newRodRenderer creates a rodRenderer with the given timeout.
func newRodRenderer(timeout time.Duration, log *zap.Logger) *rodRenderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &rodRenderer{timeout: timeout, log: log}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.launcher = l
	r.log.Debug("browser launched", zap.Int("pid", l.PID()))

	r.browser = rod.New().ControlURL(u)
	if err := r.browser.Connect(); err != nil {
		r.browser = nil
		r.killLauncher()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// Close releases browser resources and kills any leftover browser processes.
func (r *rodRenderer) Close() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	r.killLauncher()
	return err
}

func (r *rodRenderer) killLauncher() {
	if r.launcher == nil {
		return
	}
	if err := process.KillTree(r.launcher.PID()); err != nil {
		r.log.Debug("browser process tree already gone", zap.Error(err))
	}
	r.launcher.Kill()
	r.launcher.Cleanup()
	r.launcher = nil
}

// openPage loads a local HTML file and waits for it to finish loading.
func (r *rodRenderer) openPage(ctx context.Context, filePath string) (*rod.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	timeout, err := r.loadTimeout(ctx)
	if err != nil {
		_ = page.Close()
		return nil, err
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		_ = page.Close()
		return nil, err
	}
	return page, nil
}

// loadTimeout returns the page load timeout, bounded by the context deadline.
func (r *rodRenderer) loadTimeout(ctx context.Context) (time.Duration, error) {
	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return 0, context.DeadlineExceeded
		}
	}
	return timeout, nil
}

// RenderFromFile opens a local HTML file in headless Chrome and prints it to PDF.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string, opts *pdfOptions) ([]byte, error) {
	page, err := r.openPage(ctx, filePath)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	reader, err := page.PDF(buildPDFOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdfBuf, nil
}

// CaptureFromFile opens a local HTML file with a page-sized viewport and
// screenshots it one page height at a time, up to maxPages images.
func (r *rodRenderer) CaptureFromFile(ctx context.Context, filePath string, opts *pdfOptions, maxPages int) ([][]byte, error) {
	page, err := r.openPage(ctx, filePath)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	width, height := opts.viewport()
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrScreenshot, err)
	}

	res, err := page.Eval(`() => document.documentElement.scrollHeight`)
	if err != nil {
		return nil, fmt.Errorf("%w: measuring page: %v", ErrScreenshot, err)
	}
	pages := pageCount(res.Value.Int(), height, maxPages)

	shots := make([][]byte, 0, pages)
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
			Format: proto.PageCaptureScreenshotFormatPng,
			Clip: &proto.PageViewport{
				X:      0,
				Y:      float64(i * height),
				Width:  float64(width),
				Height: float64(height),
				Scale:  1,
			},
			CaptureBeyondViewport: true,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrScreenshot, i+1, err)
		}
		shots = append(shots, img)
	}
	return shots, nil
}

// pageCount returns how many page-height slices cover scrollHeight, capped
// at maxPages when maxPages is positive. There is always at least one page.
func pageCount(scrollHeight, pageHeight, maxPages int) int {
	n := 1
	if pageHeight > 0 && scrollHeight > pageHeight {
		n = (scrollHeight + pageHeight - 1) / pageHeight
	}
	if maxPages > 0 && n > maxPages {
		n = maxPages
	}
	return n
}

// buildPDFOptions constructs proto.PagePrintToPDF from the page geometry.
func buildPDFOptions(opts *pdfOptions) *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(opts.PaperWidth),
		PaperHeight:     floatPtr(opts.PaperHeight),
		MarginTop:       floatPtr(opts.Margin),
		MarginBottom:    floatPtr(opts.Margin),
		MarginLeft:      floatPtr(opts.Margin),
		MarginRight:     floatPtr(opts.Margin),
		PrintBackground: true,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// rodConverter converts HTML to PDF using headless Chrome via go-rod.
type rodConverter struct {
	renderer pdfRenderer
	closer   interface{ Close() error }
}

// newRodConverter creates a rodConverter with production renderer.
func newRodConverter(timeout time.Duration, log *zap.Logger) *rodConverter {
	r := newRodRenderer(timeout, log)
	return &rodConverter{renderer: r, closer: r}
}

// ToPDF converts HTML content to PDF bytes using headless Chrome.
func (c *rodConverter) ToPDF(ctx context.Context, htmlContent string, opts *pdfOptions) ([]byte, error) {
	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return c.renderer.RenderFromFile(ctx, tmpPath, opts)
}

// Capture renders HTML content to page images using headless Chrome.
func (c *rodConverter) Capture(ctx context.Context, htmlContent string, opts *pdfOptions, maxPages int) ([][]byte, error) {
	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return c.renderer.CaptureFromFile(ctx, tmpPath, opts, maxPages)
}

// Close releases browser resources.
func (c *rodConverter) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}
