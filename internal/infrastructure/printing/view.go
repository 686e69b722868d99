package printing

import (
	"strings"
	"time"

	"github.com/invoicegen/backend/internal/domain/document"
	"github.com/invoicegen/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// LabeledValue is a caption with its printed value
type LabeledValue struct {
	Label string
	Value string
}

// PartyView is the printable form of a party
type PartyView struct {
	Name     string
	Services string
	Address  string
	Email    string
	Phone    string
}

// Lines returns the non-empty contact lines below the name
func (p PartyView) Lines() []string {
	var out []string
	for _, s := range []string{p.Services, p.Address, p.Email, p.Phone} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ItemView is one printable table row
type ItemView struct {
	Description string
	Quantity    string
	UnitPrice   string
	Amount      string
}

// TotalLine is one row of the totals box
type TotalLine struct {
	Label    string
	Value    string
	Emphasis bool
}

// SignatureView is the printable signature block
type SignatureView struct {
	UserName string
	Position string
}

// DocumentView is the display-ready form of a document.
// Every amount is rounded and formatted here and nowhere earlier.
type DocumentView struct {
	Kind           document.Kind
	Template       document.TemplateID
	Title          string
	Number         string
	NumberLabel    string
	CurrencyCode   string
	CurrencySymbol string
	Issuer         PartyView
	RecipientLabel string
	Recipient      PartyView
	Details        []LabeledValue
	Items          []ItemView
	Totals         []TotalLine
	GrandTotal     string
	Comments       string
	Signature      *SignatureView
	Logo           *Image
	SignatureImage *Image
	GeneratedAt    time.Time
}

// HasLogo reports whether a logo image will be drawn
func (v *DocumentView) HasLogo() bool {
	return v.Logo != nil
}

// HasSignatureImage reports whether a signature image will be drawn
func (v *DocumentView) HasSignatureImage() bool {
	return v.SignatureImage != nil
}

// BuildView derives the printable view of a render request.
// symbol is the currency symbol the engine is able to draw.
func BuildView(req *RenderRequest, symbol string) *DocumentView {
	r := req.Record
	t := req.Totals

	v := &DocumentView{
		Kind:           r.Kind,
		Template:       r.Template,
		Title:          strings.ToUpper(r.Kind.DisplayName()),
		Number:         r.Number,
		NumberLabel:    r.Kind.DisplayName() + " #",
		CurrencyCode:   r.Currency.String(),
		CurrencySymbol: symbol,
		Issuer:         partyView(r.Issuer),
		Recipient:      partyView(r.Recipient),
		Comments:       strings.TrimSpace(r.Comments),
		Logo:           req.Logo,
		SignatureImage: req.Signature,
		GeneratedAt:    req.GeneratedAt,
	}

	money := func(d decimal.Decimal) string {
		return valueobject.FormatWithSymbol(d, symbol)
	}

	switch r.Kind {
	case document.KindReceipt:
		v.RecipientLabel = "Received From"
		v.Details = appendDetail(v.Details, "Payment Date", r.PaymentDate)
		v.Details = appendDetail(v.Details, "Payment Method", PaymentMethodLabel(r.PaymentMethod))
	default:
		v.RecipientLabel = "Bill To"
		v.Details = appendDetail(v.Details, "Purchase Date", r.PurchaseDate)
		v.Details = appendDetail(v.Details, "Due Date", r.DueDate)
	}

	for _, item := range r.Items.Included() {
		v.Items = append(v.Items, ItemView{
			Description: strings.TrimSpace(item.Description),
			Quantity:    FormatQuantity(item.Quantity),
			UnitPrice:   money(item.UnitPrice),
			Amount:      money(item.LineTotal()),
		})
	}

	v.Totals = append(v.Totals, TotalLine{Label: "Subtotal", Value: money(t.Subtotal)})
	if t.HasDiscount() {
		v.Totals = append(v.Totals, TotalLine{
			Label: "Discount (" + FormatRate(t.DiscountRate) + ")",
			Value: money(t.DiscountAmount.Neg()),
		})
	}
	if t.HasTax() {
		v.Totals = append(v.Totals, TotalLine{
			Label: "Tax (" + FormatRate(t.TaxRate) + ")",
			Value: money(t.TaxAmount),
		})
	}
	v.GrandTotal = money(t.Total)
	v.Totals = append(v.Totals, TotalLine{Label: "TOTAL", Value: v.GrandTotal, Emphasis: true})

	if !r.Signature.IsEmpty() {
		v.Signature = &SignatureView{
			UserName: strings.TrimSpace(r.Signature.UserName),
			Position: strings.TrimSpace(r.Signature.Position),
		}
	}

	return v
}

// FormatQuantity prints whole quantities without a fraction
func FormatQuantity(q decimal.Decimal) string {
	if q.Equal(q.Truncate(0)) {
		return q.Truncate(0).String()
	}
	return q.String()
}

// FormatRate prints a percentage rate, e.g. "7.5%"
func FormatRate(rate decimal.Decimal) string {
	return rate.String() + "%"
}

// PaymentMethodLabel turns "bank_transfer" into "Bank Transfer"
func PaymentMethodLabel(method string) string {
	method = strings.TrimSpace(strings.ReplaceAll(method, "_", " "))
	if method == "" {
		return ""
	}
	// Casers are stateful, so one is created per call.
	return cases.Title(language.English).String(strings.ToLower(method))
}

func partyView(p document.Party) PartyView {
	return PartyView{
		Name:     strings.TrimSpace(p.Name),
		Services: strings.TrimSpace(p.Services),
		Address:  strings.TrimSpace(p.Address),
		Email:    strings.TrimSpace(p.Email),
		Phone:    strings.TrimSpace(p.Phone),
	}
}

func appendDetail(details []LabeledValue, label, value string) []LabeledValue {
	value = strings.TrimSpace(value)
	if value == "" {
		return details
	}
	return append(details, LabeledValue{Label: label, Value: value})
}
