package printing

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/invoicegen/backend/internal/domain/document"
	"github.com/jung-kurt/gofpdf"
)

type rgb struct{ r, g, b int }

var (
	colorWhite     = rgb{255, 255, 255}
	colorBlack     = rgb{0, 0, 0}
	colorGrey      = rgb{128, 128, 128}
	colorLightGrey = rgb{211, 211, 211}
)

// layoutStyle is the fixed look of one template
type layoutStyle struct {
	font         string
	accent       rgb
	text         rgb
	muted        rgb
	zebra        *rgb
	band         bool
	titleAlign   string
	titleSize    float64
	companyAlign string
	headerRule   bool
	boxedParties bool
	gridTable    bool
	plainHeader  bool
}

func styleFor(id document.TemplateID) layoutStyle {
	switch id {
	case document.TemplateModern:
		return layoutStyle{
			font: "Helvetica", accent: rgb{45, 55, 72}, text: rgb{45, 55, 72}, muted: rgb{113, 128, 150},
			zebra: &rgb{247, 250, 252}, titleAlign: "C", titleSize: 18, companyAlign: "R",
		}
	case document.TemplateMinimal:
		return layoutStyle{
			font: "Helvetica", accent: rgb{45, 55, 72}, text: rgb{45, 55, 72}, muted: colorGrey,
			titleAlign: "L", titleSize: 24, companyAlign: "R", headerRule: true, plainHeader: true,
		}
	case document.TemplateCorporate:
		return layoutStyle{
			font: "Helvetica", accent: rgb{30, 58, 95}, text: colorBlack, muted: rgb{90, 90, 90},
			zebra: &rgb{238, 242, 247}, band: true, titleAlign: "L", titleSize: 20, companyAlign: "R",
			boxedParties: true, gridTable: true,
		}
	case document.TemplateElegant:
		return layoutStyle{
			font: "Times", accent: rgb{184, 134, 11}, text: rgb{51, 51, 51}, muted: rgb{120, 110, 90},
			zebra: &rgb{251, 248, 240}, titleAlign: "C", titleSize: 26, companyAlign: "C", headerRule: true,
		}
	default:
		return layoutStyle{
			font: "Helvetica", accent: rgb{37, 99, 235}, text: colorBlack, muted: colorGrey,
			zebra: &rgb{239, 246, 255}, band: true, titleAlign: "C", titleSize: 20, companyAlign: "R",
			gridTable: true,
		}
	}
}

// canvas wraps one gofpdf document with the view being drawn
type canvas struct {
	pdf      *gofpdf.Fpdf
	tr       func(string) string
	view     *DocumentView
	style    layoutStyle
	left     float64
	right    float64
	bottom   float64
	pageW    float64
	pageH    float64
	contentW float64
}

func newCanvas(pdf *gofpdf.Fpdf, view *DocumentView, spec document.TemplateSpec) *canvas {
	pageW, pageH := pdf.GetPageSize()
	c := &canvas{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		view:   view,
		style:  styleFor(spec.ID),
		left:   spec.Margins.Left,
		right:  spec.Margins.Right,
		bottom: spec.Margins.Bottom,
		pageW:  pageW,
		pageH:  pageH,
	}
	c.contentW = pageW - c.left - c.right
	return c
}

func (c *canvas) font(style string, size float64) {
	c.pdf.SetFont(c.style.font, style, size)
}

func (c *canvas) textColor(col rgb) {
	c.pdf.SetTextColor(col.r, col.g, col.b)
}

func (c *canvas) fillColor(col rgb) {
	c.pdf.SetFillColor(col.r, col.g, col.b)
}

func (c *canvas) drawColor(col rgb) {
	c.pdf.SetDrawColor(col.r, col.g, col.b)
}

// ensureSpace starts a new page when fewer than h millimeters remain
func (c *canvas) ensureSpace(h float64) bool {
	if c.pdf.GetY()+h > c.pageH-c.bottom {
		c.pdf.AddPage()
		return true
	}
	return false
}

// drawImageInBox fits img inside the box keeping its aspect ratio.
// A nil image leaves the box empty.
func (c *canvas) drawImageInBox(img *Image, x, y, boxW, boxH float64, align string) {
	if img == nil || img.Width == 0 || img.Height == 0 {
		return
	}
	name := img.Kind.String()
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	c.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))

	scale := boxW / float64(img.Width)
	if s := boxH / float64(img.Height); s < scale {
		scale = s
	}
	w := float64(img.Width) * scale
	h := float64(img.Height) * scale
	switch align {
	case "C":
		x += (boxW - w) / 2
	case "R":
		x += boxW - w
	}
	c.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
}

// =============================================================================
// Full page layouts
// =============================================================================

func (c *canvas) drawStandard() {
	c.pdf.AliasNbPages("")
	c.pdf.SetFooterFunc(c.drawFooter)
	c.pdf.AddPage()

	c.drawHeader()
	c.drawParties()
	c.drawItems()
	c.drawTotals()
	c.drawComments()
	c.drawSignatures()
}

func (c *canvas) drawFooter() {
	c.pdf.SetY(-10)
	c.font("", 7.5)
	c.textColor(c.style.muted)
	text := "Page " + strconv.Itoa(c.pdf.PageNo()) + " of {nb}"
	if !c.view.GeneratedAt.IsZero() {
		text = "Generated " + c.view.GeneratedAt.UTC().Format("2006-01-02 15:04 MST") + "   " + text
	}
	c.pdf.CellFormat(c.contentW, 5, text, "", 0, "C", false, 0, "")
}

func (c *canvas) drawHeader() {
	pdf := c.pdf
	s := c.style
	v := c.view

	if s.band {
		y := pdf.GetY()
		c.fillColor(s.accent)
		pdf.Rect(c.left, y, c.contentW, 14, "F")
		c.font("B", s.titleSize)
		c.textColor(colorWhite)
		pdf.SetXY(c.left+4, y)
		pdf.CellFormat(c.contentW-8, 14, c.tr(v.Title), "", 1, s.titleAlign, false, 0, "")
		pdf.SetY(y + 18)
	}

	const logoW, logoH = 45.0, 22.0
	top := pdf.GetY()
	c.drawImageInBox(v.Logo, c.left, top, logoW, logoH, "L")

	// Company block beside the logo region.
	blockX := c.left + logoW + 5
	blockW := c.contentW - logoW - 5
	align := s.companyAlign
	if align == "C" {
		blockX, blockW = c.left, c.contentW
	}
	pdf.SetXY(blockX, top)
	if v.Issuer.Name != "" {
		c.font("B", 13)
		c.textColor(s.accent)
		pdf.MultiCell(blockW, 6, c.tr(v.Issuer.Name), "", align, false)
	}
	c.font("", 9)
	c.textColor(s.text)
	for _, line := range v.Issuer.Lines() {
		pdf.SetX(blockX)
		pdf.MultiCell(blockW, 4.5, c.tr(line), "", align, false)
	}
	if pdf.GetY() < top+logoH {
		pdf.SetY(top + logoH)
	}
	pdf.Ln(4)

	if !s.band {
		c.font("B", s.titleSize)
		c.textColor(s.accent)
		pdf.CellFormat(c.contentW, s.titleSize/2+2, c.tr(v.Title), "", 1, s.titleAlign, false, 0, "")
		pdf.Ln(2)
	}

	if s.headerRule {
		c.drawColor(s.accent)
		pdf.SetLineWidth(0.3)
		pdf.Line(c.left, pdf.GetY(), c.left+c.contentW, pdf.GetY())
		pdf.Ln(4)
	}
}

func (c *canvas) drawParties() {
	pdf := c.pdf
	s := c.style
	v := c.view
	half := c.contentW / 2
	top := pdf.GetY()

	// Recipient column.
	if v.Recipient.Name != "" || v.Recipient.Address != "" {
		pdf.SetXY(c.left+2, top+2)
		c.font("B", 11)
		c.textColor(s.accent)
		pdf.CellFormat(half-4, 6, c.tr(v.RecipientLabel), "", 2, "L", false, 0, "")
		c.font("", 10)
		c.textColor(s.text)
		if v.Recipient.Name != "" {
			pdf.SetX(c.left + 2)
			pdf.MultiCell(half-4, 5, c.tr(v.Recipient.Name), "", "L", false)
		}
		if v.Recipient.Address != "" {
			pdf.SetX(c.left + 2)
			pdf.MultiCell(half-4, 5, c.tr(v.Recipient.Address), "", "L", false)
		}
	}
	leftBottom := pdf.GetY()

	// Document details column.
	pdf.SetXY(c.left+half, top+2)
	c.font("B", 10)
	c.textColor(s.text)
	pdf.CellFormat(half, 5.5, c.tr(v.NumberLabel+" "+v.Number), "", 2, "R", false, 0, "")
	c.font("", 10)
	for _, d := range v.Details {
		pdf.CellFormat(half, 5.5, c.tr(d.Label+": "+d.Value), "", 2, "R", false, 0, "")
	}
	pdf.CellFormat(half, 5.5, c.tr("Currency: "+v.CurrencyCode), "", 2, "R", false, 0, "")
	rightBottom := pdf.GetY()

	bottom := leftBottom
	if rightBottom > bottom {
		bottom = rightBottom
	}
	if s.boxedParties {
		c.drawColor(colorLightGrey)
		pdf.SetLineWidth(0.2)
		pdf.Rect(c.left, top, half-2, bottom-top+2, "D")
	}
	pdf.SetXY(c.left, bottom+6)
}

// item table column widths
func (c *canvas) columns() (desc, qty, price, amount float64) {
	qty, price, amount = 18, 32, 34
	return c.contentW - qty - price - amount, qty, price, amount
}

func (c *canvas) drawTableHeader() {
	pdf := c.pdf
	s := c.style
	descW, qtyW, priceW, amtW := c.columns()

	c.font("B", 10)
	border := ""
	fill := !s.plainHeader
	if fill {
		c.fillColor(s.accent)
		c.textColor(colorWhite)
	} else {
		c.textColor(s.accent)
	}
	if s.gridTable {
		border = "1"
		c.drawColor(colorGrey)
		pdf.SetLineWidth(0.2)
	}
	pdf.CellFormat(descW, 8, "Description", border, 0, "L", fill, 0, "")
	pdf.CellFormat(qtyW, 8, "Qty", border, 0, "C", fill, 0, "")
	pdf.CellFormat(priceW, 8, "Unit Price", border, 0, "R", fill, 0, "")
	pdf.CellFormat(amtW, 8, "Amount", border, 1, "R", fill, 0, "")

	if s.plainHeader {
		c.drawColor(s.accent)
		pdf.SetLineWidth(0.3)
		pdf.Line(c.left, pdf.GetY(), c.left+c.contentW, pdf.GetY())
	}
}

func (c *canvas) drawItems() {
	pdf := c.pdf
	s := c.style
	descW, qtyW, priceW, amtW := c.columns()
	const lineH = 5.0

	c.drawTableHeader()
	for i, item := range c.view.Items {
		c.font("", 9.5)
		lines := pdf.SplitLines([]byte(c.tr(item.Description)), descW-2)
		n := len(lines)
		if n == 0 {
			n = 1
		}
		rowH := float64(n)*lineH + 2

		if c.ensureSpace(rowH) {
			c.drawTableHeader()
			c.font("", 9.5)
		}

		y := pdf.GetY()
		if s.zebra != nil && i%2 == 1 {
			c.fillColor(*s.zebra)
			pdf.Rect(c.left, y, c.contentW, rowH, "F")
		}
		c.textColor(s.text)
		for j, line := range lines {
			pdf.SetXY(c.left+1, y+1+float64(j)*lineH)
			pdf.CellFormat(descW-2, lineH, string(line), "", 0, "L", false, 0, "")
		}

		border := ""
		if s.gridTable {
			border = "1"
			c.drawColor(colorGrey)
			pdf.SetLineWidth(0.2)
			pdf.Rect(c.left, y, descW, rowH, "D")
		}
		pdf.SetXY(c.left+descW, y)
		pdf.CellFormat(qtyW, rowH, c.tr(item.Quantity), border, 0, "C", false, 0, "")
		pdf.CellFormat(priceW, rowH, c.tr(item.UnitPrice), border, 0, "R", false, 0, "")
		pdf.CellFormat(amtW, rowH, c.tr(item.Amount), border, 1, "R", false, 0, "")

		if !s.gridTable {
			c.drawColor(colorLightGrey)
			pdf.SetLineWidth(0.1)
			pdf.Line(c.left, y+rowH, c.left+c.contentW, y+rowH)
		}
		pdf.SetY(y + rowH)
	}
	pdf.Ln(4)
}

func (c *canvas) drawTotals() {
	pdf := c.pdf
	s := c.style
	const boxW, labelW, rowH = 85.0, 45.0, 7.0
	x := c.left + c.contentW - boxW

	c.ensureSpace(float64(len(c.view.Totals))*rowH + 4)
	top := pdf.GetY()
	for _, line := range c.view.Totals {
		pdf.SetX(x)
		if line.Emphasis {
			c.font("B", 12)
			fill := s.band || s.zebra != nil
			if fill {
				c.fillColor(s.accent)
				c.textColor(colorWhite)
			} else {
				c.textColor(s.accent)
				c.drawColor(s.accent)
				pdf.SetLineWidth(0.3)
				pdf.Line(x, pdf.GetY(), x+boxW, pdf.GetY())
			}
			pdf.CellFormat(labelW, rowH+1, c.tr(line.Label), "", 0, "L", fill, 0, "")
			pdf.CellFormat(boxW-labelW, rowH+1, c.tr(line.Value), "", 1, "R", fill, 0, "")
			continue
		}
		c.font("", 10)
		c.textColor(s.text)
		pdf.CellFormat(labelW, rowH, c.tr(line.Label), "", 0, "L", false, 0, "")
		pdf.CellFormat(boxW-labelW, rowH, c.tr(line.Value), "", 1, "R", false, 0, "")
	}
	if s.gridTable {
		c.drawColor(colorGrey)
		pdf.SetLineWidth(0.2)
		pdf.Rect(x, top, boxW, pdf.GetY()-top, "D")
	}
	pdf.Ln(6)
}

func (c *canvas) drawComments() {
	if c.view.Comments == "" {
		return
	}
	pdf := c.pdf
	c.ensureSpace(15)
	c.font("B", 10)
	c.textColor(c.style.accent)
	pdf.CellFormat(c.contentW, 6, "Notes", "", 1, "L", false, 0, "")
	c.font("", 9)
	c.textColor(c.style.muted)
	pdf.MultiCell(c.contentW, 4.5, c.tr(c.view.Comments), "", "L", false)
	pdf.Ln(6)
}

func (c *canvas) drawSignatures() {
	pdf := c.pdf
	v := c.view
	const blockW, imgH = 70.0, 20.0

	c.ensureSpace(imgH + 25)
	top := pdf.GetY()

	// Authorized signature on the left, always drawn.
	c.drawImageInBox(v.SignatureImage, c.left, top, blockW, imgH, "C")
	c.signatureLine(c.left, top+imgH+2, blockW, "Authorized Signature", v.Signature)

	if v.Kind == document.KindReceipt {
		c.signatureLine(c.left+c.contentW-blockW, top+imgH+2, blockW, "Customer Signature", nil)
	}
	pdf.SetY(top + imgH + 20)
}

func (c *canvas) signatureLine(x, y, w float64, label string, sig *SignatureView) {
	pdf := c.pdf
	c.drawColor(colorBlack)
	pdf.SetLineWidth(0.3)
	pdf.Line(x, y, x+w, y)

	pdf.SetXY(x, y+1)
	c.font("B", 10)
	c.textColor(c.style.accent)
	pdf.CellFormat(w, 5, label, "", 2, "C", false, 0, "")
	if sig == nil {
		return
	}
	c.font("", 9)
	c.textColor(c.style.muted)
	if sig.UserName != "" {
		pdf.CellFormat(w, 4.5, c.tr(sig.UserName), "", 2, "C", false, 0, "")
	}
	if sig.Position != "" {
		pdf.CellFormat(w, 4.5, c.tr(sig.Position), "", 2, "C", false, 0, "")
	}
}

// =============================================================================
// Thermal roll layout
// =============================================================================

func (c *canvas) drawThermal() {
	pdf := c.pdf
	v := c.view
	c.style.font = "Courier"
	pdf.AddPage()

	const lineH = 3.6
	center := func(text, style string, size float64) {
		c.font(style, size)
		c.textColor(colorBlack)
		pdf.MultiCell(c.contentW, lineH, c.tr(text), "", "C", false)
	}
	rule := func(ch string) {
		center(strings.Repeat(ch, 30), "", 8)
	}

	if v.Logo != nil {
		c.drawImageInBox(v.Logo, c.left, pdf.GetY(), c.contentW, 15, "C")
		pdf.Ln(16)
	}
	if v.Issuer.Name != "" {
		center(strings.ToUpper(v.Issuer.Name), "B", 9)
	}
	if v.Issuer.Services != "" {
		center(strings.ToUpper(v.Issuer.Services), "", 8)
	}
	if v.Issuer.Address != "" {
		center(v.Issuer.Address, "", 8)
	}
	if v.Issuer.Phone != "" {
		center("Tel: "+v.Issuer.Phone, "", 8)
	}

	rule("=")
	center(v.Title, "B", 9)
	rule("=")

	center("No: "+v.Number, "", 8)
	for _, d := range v.Details {
		value := d.Value
		if d.Label == "Payment Method" {
			value = strings.ToUpper(value)
		}
		center(d.Label+": "+value, "", 8)
	}
	if v.Recipient.Name != "" {
		center("Customer: "+v.Recipient.Name, "", 8)
	}
	rule("-")

	if len(v.Items) == 0 {
		center("No items", "", 8)
	}
	for _, item := range v.Items {
		center(item.Description, "", 8)
		center(item.Quantity+" x "+item.UnitPrice+" = "+item.Amount, "", 8)
	}
	rule("-")

	for _, line := range v.Totals {
		if line.Emphasis {
			center(line.Label+": "+line.Value, "B", 9)
			continue
		}
		center(line.Label+": "+line.Value, "", 8)
	}
	rule("-")

	if v.Comments != "" {
		center(v.Comments, "", 7)
		pdf.Ln(2)
	}

	if v.SignatureImage != nil {
		c.drawImageInBox(v.SignatureImage, c.left, pdf.GetY(), c.contentW, 12, "C")
		pdf.Ln(13)
	}
	if v.Signature != nil && v.Signature.UserName != "" {
		center(v.Signature.UserName, "", 8)
	}
	center("Thank you!", "B", 8)
}
