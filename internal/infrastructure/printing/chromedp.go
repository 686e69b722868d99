package printing

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/invoicegen/backend/internal/domain/document"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second
	defaultScale         = 1.0
	// thermal rolls are printed on one tall page
	receiptRollLengthMM = 3000
)

// ChromedpConfig configures the headless Chrome engine
type ChromedpConfig struct {
	DefaultTimeout time.Duration
	// ExecPath is the browser binary. Empty searches PATH.
	ExecPath string
	// RemoteURL attaches to a running browser's DevTools endpoint
	// instead of launching one.
	RemoteURL string
	// NoSandbox is needed when the browser runs as root in a container.
	NoSandbox bool
	Scale     float64
	Logger    *zap.Logger
}

// ChromedpRenderer prints the HTML layouts through headless Chrome.
// Unlike the gofpdf core fonts it can draw every Unicode currency symbol.
type ChromedpRenderer struct {
	cfg          ChromedpConfig
	log          *zap.Logger
	layouts      *TemplateEngine
	browser      context.Context
	closeBrowser context.CancelFunc
}

// NewChromedpRenderer prepares a browser allocator. No browser process
// starts until the first Render.
func NewChromedpRenderer(cfg *ChromedpConfig) (*ChromedpRenderer, error) {
	r := &ChromedpRenderer{}
	if cfg != nil {
		r.cfg = *cfg
	}
	if r.cfg.DefaultTimeout <= 0 {
		r.cfg.DefaultTimeout = defaultChromeTimeout
	}
	if r.cfg.Scale <= 0 {
		r.cfg.Scale = defaultScale
	}
	r.log = r.cfg.Logger
	if r.log == nil {
		r.log = zap.NewNop()
	}

	layouts, err := NewTemplateEngine()
	if err != nil {
		return nil, err
	}
	r.layouts = layouts

	if r.cfg.RemoteURL != "" {
		r.browser, r.closeBrowser = chromedp.NewRemoteAllocator(context.Background(), r.cfg.RemoteURL)
	} else {
		r.browser, r.closeBrowser = chromedp.NewExecAllocator(context.Background(), browserFlags(r.cfg)...)
	}
	return r, nil
}

func browserFlags(cfg ChromedpConfig) []chromedp.ExecAllocatorOption {
	flags := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	flags = append(flags,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		flags = append(flags, chromedp.NoSandbox)
	}
	if cfg.ExecPath != "" {
		flags = append(flags, chromedp.ExecPath(cfg.ExecPath))
	}
	return flags
}

// Render fills the HTML layout for req and prints it to PDF
func (r *ChromedpRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	began := time.Now()

	timeout := req.timeoutOr(r.cfg.DefaultTimeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	html, err := r.layouts.RenderView(ctx, BuildView(req, req.Record.Currency.Symbol()))
	if err != nil {
		return nil, err
	}

	tab, closeTab := chromedp.NewContext(r.browser, chromedp.WithLogf(r.debugf))
	defer closeTab()
	// the tab is not derived from ctx, so tie its lifetime to the deadline
	defer context.AfterFunc(ctx, closeTab)()

	var pdf []byte
	layout := pageLayoutFor(req.Template, r.cfg.Scale)
	if err := chromedp.Run(tab, loadHTML(html), layout.print(&pdf)); err != nil {
		if ctx.Err() != nil {
			return nil, timeoutError(ctx, timeout, err)
		}
		r.log.Error("Chrome failed to print document", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
	}
	if len(pdf) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	result := &RenderResult{
		PDFData:        pdf,
		PageCount:      estimatePageCount(pdf),
		RenderDuration: time.Since(began),
		Engine:         EngineChromedp,
	}
	r.log.Debug("Document printed",
		zap.String("template", req.Template.ID.String()),
		zap.Int("pages", result.PageCount),
		zap.Int("bytes", len(pdf)),
		zap.Duration("took", result.RenderDuration))
	return result, nil
}

func (r *ChromedpRenderer) debugf(format string, args ...interface{}) {
	r.log.Debug(fmt.Sprintf(format, args...))
}

// loadHTML replaces the blank page's document with html
func loadHTML(html string) chromedp.Action {
	return chromedp.Tasks{
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
	}
}

// pageLayout is a template's page geometry in inches
type pageLayout struct {
	width, height            float64
	top, right, bottom, left float64
	scale                    float64
	landscape                bool
}

func pageLayoutFor(spec document.TemplateSpec, scale float64) pageLayout {
	w, h := spec.PaperSize.Dimensions()
	if spec.PaperSize.IsReceipt() {
		h = receiptRollLengthMM
	}
	return pageLayout{
		width:     mmToInches(w),
		height:    mmToInches(h),
		top:       mmToInches(spec.Margins.Top),
		right:     mmToInches(spec.Margins.Right),
		bottom:    mmToInches(spec.Margins.Bottom),
		left:      mmToInches(spec.Margins.Left),
		scale:     scale,
		landscape: spec.Orientation == document.OrientationLandscape,
	}
}

func (l pageLayout) params() *page.PrintToPDFParams {
	return page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(l.width).
		WithPaperHeight(l.height).
		WithMarginTop(l.top).
		WithMarginRight(l.right).
		WithMarginBottom(l.bottom).
		WithMarginLeft(l.left).
		WithScale(l.scale).
		WithLandscape(l.landscape)
}

// print stores the printed PDF in out
func (l pageLayout) print(out *[]byte) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		data, _, err := l.params().Do(ctx)
		if err != nil {
			return err
		}
		*out = data
		return nil
	})
}

// Close shuts down the browser allocator
func (r *ChromedpRenderer) Close() error {
	if r.closeBrowser != nil {
		r.closeBrowser()
	}
	return nil
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)
