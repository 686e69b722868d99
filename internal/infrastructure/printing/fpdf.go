package printing

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/invoicegen/backend/internal/domain/document"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

const defaultFPDFTimeout = 30 * time.Second

// FPDFConfig contains configuration for the gofpdf renderer
type FPDFConfig struct {
	// DefaultTimeout for rendering operations
	DefaultTimeout time.Duration
	// Creator is written to the PDF metadata
	Creator string
	// Logger for debug output
	Logger *zap.Logger
}

// FPDFRenderer draws documents with fixed layouts using gofpdf.
// It needs no external binary.
type FPDFRenderer struct {
	config *FPDFConfig
	logger *zap.Logger
}

// NewFPDFRenderer creates a new gofpdf-based PDF renderer
func NewFPDFRenderer(config *FPDFConfig) *FPDFRenderer {
	if config == nil {
		config = &FPDFConfig{}
	}
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = defaultFPDFTimeout
	}
	if config.Creator == "" {
		config.Creator = "docgen"
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FPDFRenderer{config: config, logger: logger}
}

type fpdfOutcome struct {
	data  []byte
	pages int
	err   error
}

// Render lays out the document and returns the PDF bytes.
// gofpdf is not context aware, so drawing runs in its own goroutine and the
// timeout abandons it.
func (r *FPDFRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	began := time.Now()

	timeout := req.timeoutOr(r.config.DefaultTimeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan fpdfOutcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fpdfOutcome{err: fmt.Errorf("layout panicked: %v", p)}
			}
		}()
		data, pages, err := r.draw(req)
		done <- fpdfOutcome{data: data, pages: pages, err: err}
	}()

	var out fpdfOutcome
	select {
	case <-ctx.Done():
		return nil, timeoutError(ctx, timeout, ctx.Err())
	case out = <-done:
	}

	if out.err != nil {
		r.logger.Error("gofpdf failed to draw document", zap.Error(out.err))
		return nil, NewRenderError(ErrCodeRenderFailed, "PDF layout failed", out.err)
	}
	if len(out.data) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	result := &RenderResult{
		PDFData:        out.data,
		PageCount:      out.pages,
		RenderDuration: time.Since(began),
		Engine:         EngineFPDF,
	}
	r.logger.Debug("Document drawn",
		zap.String("template", req.Template.ID.String()),
		zap.Int("pages", result.PageCount),
		zap.Int("bytes", len(result.PDFData)),
		zap.Duration("took", result.RenderDuration))
	return result, nil
}

// draw builds the whole document in memory
func (r *FPDFRenderer) draw(req *RenderRequest) ([]byte, int, error) {
	spec := req.Template
	width, height := spec.PaperSize.Dimensions()
	orientation := "P"
	if spec.Orientation == document.OrientationLandscape {
		orientation = "L"
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	m := spec.Margins
	pdf.SetMargins(m.Left, m.Top, m.Right)
	pdf.SetAutoPageBreak(true, m.Bottom)
	pdf.SetTitle(req.Title(), true)
	pdf.SetAuthor(req.Record.Issuer.Name, true)
	pdf.SetCreator(r.config.Creator, true)
	pdf.SetSubject(req.Record.Kind.DisplayName(), true)

	view := BuildView(req, req.Record.Currency.PDFSafeSymbol())
	c := newCanvas(pdf, view, spec)

	if spec.ID == document.TemplateThermal {
		c.drawThermal()
	} else {
		c.drawStandard()
	}

	if pdf.Err() {
		return nil, 0, pdf.Error()
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), pdf.PageCount(), nil
}

// Close releases resources held by the renderer
func (r *FPDFRenderer) Close() error {
	return nil
}

// Ensure FPDFRenderer implements PDFRenderer
var _ PDFRenderer = (*FPDFRenderer)(nil)
