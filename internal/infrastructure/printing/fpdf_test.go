package printing

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/invoicegen/backend/internal/domain/document"
	"github.com/invoicegen/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFPDFRenderer_Defaults(t *testing.T) {
	r := NewFPDFRenderer(nil)
	assert.Equal(t, defaultFPDFTimeout, r.config.DefaultTimeout)
	assert.Equal(t, "docgen", r.config.Creator)
	assert.NotNil(t, r.logger)
	assert.NoError(t, r.Close())
}

func TestFPDFRenderer_RendersEveryTemplate(t *testing.T) {
	r := NewFPDFRenderer(nil)

	for _, kind := range document.AllKinds() {
		for _, spec := range document.TemplatesFor(kind) {
			t.Run(kind.String()+"/"+spec.ID.String(), func(t *testing.T) {
				req := sampleRequest(t, kind, spec.ID)

				result, err := r.Render(context.Background(), req)
				require.NoError(t, err)

				assert.True(t, bytes.HasPrefix(result.PDFData, []byte("%PDF")))
				assert.Equal(t, EngineFPDF, result.Engine)
				assert.GreaterOrEqual(t, result.PageCount, 1)
			})
		}
	}
}

func TestFPDFRenderer_WithAttachments(t *testing.T) {
	p := NewAttachmentProcessor(nil)
	logo, aerr := p.Process(context.Background(), pngUpload(t, document.AttachmentLogo, 300, 120))
	require.Nil(t, aerr)
	sig, aerr := p.Process(context.Background(), pngUpload(t, document.AttachmentSignature, 200, 60))
	require.Nil(t, aerr)

	req := sampleRequest(t, document.KindReceipt, document.TemplateModern)
	req.Logo = logo
	req.Signature = sig

	result, err := NewFPDFRenderer(nil).Render(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(result.PDFData, []byte("%PDF")))
}

func TestFPDFRenderer_ManyItemsSpanPages(t *testing.T) {
	req := sampleRequest(t, document.KindInvoice, document.TemplateClassic)
	items := make(document.LineItems, 0, 120)
	for i := 0; i < 120; i++ {
		items = append(items, document.NewLineItem("Consulting hours for the quarterly review",
			decimal.NewFromInt(1), decimal.NewFromInt(10)))
	}
	req.Record.Items = items
	totals, err := document.CalculateRecordTotals(req.Record)
	require.NoError(t, err)
	req.Totals = totals

	result, err := NewFPDFRenderer(nil).Render(context.Background(), req)
	require.NoError(t, err)
	assert.Greater(t, result.PageCount, 1)
}

func TestFPDFRenderer_UnknownCurrencySymbol(t *testing.T) {
	req := sampleRequest(t, document.KindInvoice, document.TemplateMinimal)
	req.Record.Currency = valueobject.Currency("XYZ")

	result, err := NewFPDFRenderer(nil).Render(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, result.PDFData)
}

func TestFPDFRenderer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := sampleRequest(t, document.KindInvoice, document.TemplateClassic)
	req.Timeout = time.Second

	// Either the draw wins the race or the cancellation does; both are valid
	// but a cancellation must be reported as a timeout code.
	_, err := NewFPDFRenderer(nil).Render(ctx, req)
	if err != nil {
		var renderErr *RenderError
		require.True(t, errors.As(err, &renderErr))
		assert.Equal(t, ErrCodeRenderTimeout, renderErr.Code)
	}
}

func TestFPDFRenderer_InvalidRequest(t *testing.T) {
	_, err := NewFPDFRenderer(nil).Render(context.Background(), nil)
	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, ErrCodeInvalidRequest, renderErr.Code)
}

func TestStyleFor(t *testing.T) {
	assert.Equal(t, "Times", styleFor(document.TemplateElegant).font)
	assert.True(t, styleFor(document.TemplateClassic).band)
	assert.True(t, styleFor(document.TemplateCorporate).boxedParties)
	assert.Nil(t, styleFor(document.TemplateMinimal).zebra)
	// unknown ids fall back to the classic look
	assert.Equal(t, styleFor(document.TemplateClassic), styleFor(document.TemplateID("other")))
}
