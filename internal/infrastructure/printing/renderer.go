package printing

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/invoicegen/backend/internal/domain/document"
)

// Engine names accepted in configuration
const (
	EngineFPDF     = "gofpdf"
	EngineChromedp = "chromedp"
)

// PDFRenderer turns one validated document into PDF bytes.
// Implementations must honor ctx and be safe for concurrent use.
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// RenderRequest is one document ready to be laid out. Totals are the
// server-computed values and always win over anything in Record.
type RenderRequest struct {
	Record    *document.DocumentRecord
	Totals    document.Totals
	Template  document.TemplateSpec
	Logo      *Image
	Signature *Image
	// GeneratedAt is printed in the footer and PDF metadata
	GeneratedAt time.Time
	// Timeout overrides the engine's default when positive
	Timeout time.Duration
}

// Title is the PDF metadata title, e.g. "Invoice INV-001"
func (r *RenderRequest) Title() string {
	return r.Record.Kind.DisplayName() + " " + r.Record.Number
}

func (r *RenderRequest) timeoutOr(fallback time.Duration) time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return fallback
}

// RenderResult is a finished PDF
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
	Engine         string
}

// Rendering failure codes
const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeBinaryNotFound   = "BINARY_NOT_FOUND"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
)

// RenderError is returned by every engine. Code is one of the ErrCode
// constants; Cause may be nil.
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

func (e *RenderError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *RenderError) Unwrap() error { return e.Cause }

func validateRequest(req *RenderRequest) error {
	switch {
	case req == nil:
		return NewRenderError(ErrCodeInvalidRequest, "render request is nil", nil)
	case req.Record == nil:
		return NewRenderError(ErrCodeInvalidRequest, "render request has no record", nil)
	case !req.Template.PaperSize.IsValid():
		return NewRenderError(ErrCodeInvalidPaperSize, "invalid paper size: "+string(req.Template.PaperSize), nil)
	}
	return nil
}

// timeoutError reports a render stopped by its context
func timeoutError(ctx context.Context, timeout time.Duration, cause error) *RenderError {
	if errors.Is(ctx.Err(), context.Canceled) {
		return NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", cause)
	}
	return NewRenderError(ErrCodeRenderTimeout, "PDF rendering timed out after "+timeout.String(), cause)
}

var (
	pageMarker  = []byte("/Type /Page")
	pagesMarker = []byte("/Type /Pages")
)

// estimatePageCount counts page objects in a PDF Chrome produced.
// "/Type /Pages" shares the page marker's prefix and is subtracted.
func estimatePageCount(pdf []byte) int {
	n := bytes.Count(pdf, pageMarker) - bytes.Count(pdf, pagesMarker)
	return max(n, 1)
}

func mmToInches(mm float64) float64 { return mm / 25.4 }
