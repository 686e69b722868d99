package document

import (
	"strings"

	"github.com/invoicegen/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LineItem is one billable row
type LineItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// NewLineItem creates a LineItem
func NewLineItem(description string, quantity, unitPrice decimal.Decimal) LineItem {
	return LineItem{Description: description, Quantity: quantity, UnitPrice: unitPrice}
}

// LineTotal returns quantity × unit price, unrounded
func (i LineItem) LineTotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// IsIncluded reports whether the row counts towards the totals.
// Rows without a description or with a non-positive quantity are incomplete.
func (i LineItem) IsIncluded() bool {
	return strings.TrimSpace(i.Description) != "" && i.Quantity.IsPositive()
}

// LineItems is the ordered item list of a record
type LineItems []LineItem

// Included returns the rows that pass the inclusion rule, in order
func (items LineItems) Included() LineItems {
	out := make(LineItems, 0, len(items))
	for _, item := range items {
		if item.IsIncluded() {
			out = append(out, item)
		}
	}
	return out
}

// Party is the issuer or recipient of a document
type Party struct {
	Name     string
	Address  string
	Email    string
	Phone    string
	Services string
}

// HasName reports whether the party carries a non-blank name
func (p Party) HasName() bool {
	return strings.TrimSpace(p.Name) != ""
}

// Signature is the optional signing block
type Signature struct {
	UserName string
	Position string
}

// IsEmpty returns true if no signature detail was provided
func (s *Signature) IsEmpty() bool {
	return s == nil || (strings.TrimSpace(s.UserName) == "" && strings.TrimSpace(s.Position) == "")
}

// ClientTotals are totals computed by the submitting client.
// They are informational only.
type ClientTotals struct {
	Subtotal       decimal.NullDecimal
	DiscountAmount decimal.NullDecimal
	TaxAmount      decimal.NullDecimal
	Total          decimal.NullDecimal
	CurrencySymbol string
}

// DocumentRecord is the structured content of one invoice or receipt.
// It lives for one generation request only.
type DocumentRecord struct {
	Kind     Kind
	Number   string
	Currency valueobject.Currency
	Template TemplateID

	Issuer    Party
	Recipient Party

	Items        LineItems
	TaxRate      decimal.NullDecimal
	DiscountRate decimal.NullDecimal

	Comments  string
	Signature *Signature

	// Passed through verbatim.
	DueDate       string
	PurchaseDate  string
	PaymentDate   string
	PaymentMethod string

	ClientTotals ClientTotals
}

// TemplateSpec returns the layout selected by the record.
// Only meaningful after Normalize.
func (r *DocumentRecord) TemplateSpec() (TemplateSpec, bool) {
	return LookupTemplate(r.Kind, r.Template)
}

// Normalize trims identification fields and fills defaults for currency and template.
// It returns the currency parse error, if any, so validation can report it by field.
func (r *DocumentRecord) Normalize() error {
	r.Number = strings.TrimSpace(r.Number)
	r.Issuer.Name = strings.TrimSpace(r.Issuer.Name)
	r.Recipient.Name = strings.TrimSpace(r.Recipient.Name)

	tmpl := TemplateID(strings.ToLower(strings.TrimSpace(string(r.Template))))
	if tmpl == "" {
		tmpl = DefaultTemplate
	}
	r.Template = tmpl

	cur, err := valueobject.ParseCurrency(string(r.Currency))
	if err != nil {
		return err
	}
	r.Currency = cur
	return nil
}
