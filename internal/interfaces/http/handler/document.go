package handler

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	documentapp "github.com/invoicegen/backend/internal/application/document"
	"github.com/invoicegen/backend/internal/domain/document"
	"github.com/invoicegen/backend/internal/infrastructure/printing"
	"github.com/invoicegen/backend/internal/interfaces/http/dto"
	"github.com/invoicegen/backend/internal/interfaces/http/middleware"
)

// Multipart field names
const (
	FieldInvoiceData = "invoice_data"
	FieldReceiptData = "receipt_data"
	FieldData        = "data"
	FieldLogo        = "logo"
	FieldSignature   = "signature"
)

// DocumentHandler handles the invoice and receipt endpoints
type DocumentHandler struct {
	BaseHandler
	service *documentapp.GenerationService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(service *documentapp.GenerationService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// GenerateInvoicePDF godoc
// @ID           generateInvoicePdf
// @Summary      Generate an invoice PDF
// @Description  Validates the invoice, recomputes its totals and renders it. Logo and signature images are optional.
// @Tags         invoices
// @Accept       multipart/form-data
// @Produce      application/pdf
// @Param        invoice_data formData string true  "Invoice record as JSON"
// @Param        logo         formData file   false "Company logo (PNG, JPEG or GIF)"
// @Param        signature    formData file   false "Signature image (PNG, JPEG or GIF)"
// @Success      200 {file} binary
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /invoices/generate-pdf [post]
func (h *DocumentHandler) GenerateInvoicePDF(c *gin.Context) {
	h.generate(c, document.KindInvoice)
}

// GenerateReceiptPDF godoc
// @ID           generateReceiptPdf
// @Summary      Generate a receipt PDF
// @Description  Validates the receipt, recomputes its totals and renders it. Logo and signature images are optional.
// @Tags         receipts
// @Accept       multipart/form-data
// @Produce      application/pdf
// @Param        receipt_data formData string true  "Receipt record as JSON"
// @Param        logo         formData file   false "Company logo (PNG, JPEG or GIF)"
// @Param        signature    formData file   false "Signature image (PNG, JPEG or GIF)"
// @Success      200 {file} binary
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /receipts/generate-pdf [post]
func (h *DocumentHandler) GenerateReceiptPDF(c *gin.Context) {
	h.generate(c, document.KindReceipt)
}

func (h *DocumentHandler) generate(c *gin.Context, kind document.Kind) {
	form, err := c.MultipartForm()
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			middleware.AbortTooLarge(c)
			return
		}
		h.BadRequest(c, dto.ErrCodeBadRequest, "Expected a multipart/form-data request")
		return
	}
	defer func() {
		_ = form.RemoveAll()
	}()

	field := dataField(kind)
	raw := firstValue(form, field, FieldData)
	if strings.TrimSpace(raw) == "" {
		h.ValidationError(c, []dto.ValidationDetail{{
			Field:   field,
			Message: "This field is required",
			Code:    "required",
		}})
		return
	}

	var req documentapp.RecordRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		h.BadRequest(c, dto.ErrCodeInvalidJSON, fmt.Sprintf("Field %s is not valid JSON", field))
		return
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		h.HandleError(c, err)
		return
	}

	in := documentapp.GenerateInput{Kind: kind, Record: req.ToRecord(kind)}

	logo, closeLogo := openUpload(form, FieldLogo, document.AttachmentLogo)
	defer closeLogo()
	in.Logo = logo

	signature, closeSignature := openUpload(form, FieldSignature, document.AttachmentSignature)
	defer closeSignature()
	in.Signature = signature

	result, err := h.service.Generate(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	for _, w := range result.Warnings {
		c.Writer.Header().Add(middleware.HeaderAttachmentWarning, attachmentWarning(w))
	}
	c.Header(middleware.HeaderGenerationID, result.GenerationID.String())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "application/pdf", result.PDFData)
}

// CalculateInvoiceTotals godoc
// @ID           calculateInvoiceTotals
// @Summary      Preview invoice totals
// @Description  Computes the authoritative totals of an invoice without rendering it
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body document.RecordRequest true "Invoice record"
// @Success      200 {object} APIResponse[document.TotalsResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /invoices/totals [post]
func (h *DocumentHandler) CalculateInvoiceTotals(c *gin.Context) {
	h.totals(c, document.KindInvoice)
}

// CalculateReceiptTotals godoc
// @ID           calculateReceiptTotals
// @Summary      Preview receipt totals
// @Description  Computes the authoritative totals of a receipt without rendering it
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        request body document.RecordRequest true "Receipt record"
// @Success      200 {object} APIResponse[document.TotalsResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /receipts/totals [post]
func (h *DocumentHandler) CalculateReceiptTotals(c *gin.Context) {
	h.totals(c, document.KindReceipt)
}

func (h *DocumentHandler) totals(c *gin.Context, kind document.Kind) {
	var req documentapp.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if middleware.IsBodyTooLarge(err) {
			middleware.AbortTooLarge(c)
			return
		}
		if len(middleware.ValidationDetails(err)) > 0 {
			h.HandleError(c, err)
			return
		}
		h.BadRequest(c, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
		return
	}

	totals, err := h.service.CalculateTotals(c.Request.Context(), kind, req.ToRecord(kind))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, totals)
}

// ListTemplates godoc
// @ID           listTemplates
// @Summary      List document templates
// @Description  Returns the template catalog, optionally restricted to one document kind
// @Tags         templates
// @Produce      json
// @Param        kind query string false "Document kind" Enums(invoice, receipt)
// @Success      200 {object} APIResponse[[]document.TemplateResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /templates [get]
func (h *DocumentHandler) ListTemplates(c *gin.Context) {
	templates, err := h.service.ListTemplates(c.Query("kind"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, templates, len(templates))
}

func dataField(kind document.Kind) string {
	if kind == document.KindReceipt {
		return FieldReceiptData
	}
	return FieldInvoiceData
}

// firstValue returns the first non-empty value among the named form fields
func firstValue(form *multipart.Form, names ...string) string {
	for _, name := range names {
		if values := form.Value[name]; len(values) > 0 && values[0] != "" {
			return values[0]
		}
	}
	return ""
}

// openUpload opens the first file of a form field. A missing file yields a
// nil upload. A file that cannot be opened yields an upload carrying OpenErr,
// which generation reports as a dropped attachment.
func openUpload(form *multipart.Form, field string, kind document.AttachmentKind) (*printing.Upload, func()) {
	files := form.File[field]
	if len(files) == 0 {
		return nil, func() {}
	}

	fh := files[0]
	up := &printing.Upload{
		Kind:        kind,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}
	f, err := fh.Open()
	if err != nil {
		up.OpenErr = fmt.Errorf("open %s upload: %w", field, err)
		return up, func() {}
	}
	up.Reader = f
	return up, func() { _ = f.Close() }
}

// attachmentWarning renders a dropped attachment as a header value
func attachmentWarning(w *document.AttachmentError) string {
	return fmt.Sprintf("%s; code=%s; %s", w.Attachment, w.Code, w.Message)
}
