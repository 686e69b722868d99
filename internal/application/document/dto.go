package document

import (
	"strings"

	domain "github.com/invoicegen/backend/internal/domain/document"
	"github.com/invoicegen/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Record DTOs
// =============================================================================

// LineItemRequest is one item row as submitted by the client
type LineItemRequest struct {
	Description string          `json:"description" binding:"max=500"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CompanyRequest is the issuing company block
type CompanyRequest struct {
	Name     string `json:"name" binding:"max=200"`
	Address  string `json:"address" binding:"max=500"`
	Email    string `json:"email" binding:"max=254"`
	Phone    string `json:"phone" binding:"max=50"`
	Services string `json:"services" binding:"max=500"`
}

// SignatureRequest is the optional signing block
type SignatureRequest struct {
	UserName string `json:"user_name" binding:"max=200"`
	Position string `json:"position" binding:"max=200"`
}

// RecordRequest is the JSON payload of both invoices and receipts.
// Kind-specific fields that do not apply to the requested kind are ignored.
type RecordRequest struct {
	InvoiceNumber string `json:"invoice_number"`
	ReceiptNumber string `json:"receipt_number"`
	Currency      string `json:"currency" binding:"omitempty,currency"`
	Template      string `json:"template" binding:"max=32"`

	Company CompanyRequest `json:"company"`

	ClientName      string `json:"client_name"`
	ClientAddress   string `json:"client_address"`
	CustomerName    string `json:"customer_name"`
	CustomerAddress string `json:"customer_address"`

	Items        []LineItemRequest   `json:"items" binding:"dive"`
	TaxRate      decimal.NullDecimal `json:"tax_rate"`
	DiscountRate decimal.NullDecimal `json:"discount_rate"`

	Comments  string            `json:"comments"`
	Signature *SignatureRequest `json:"signature"`

	DueDate       string `json:"due_date" binding:"max=64"`
	PurchaseDate  string `json:"purchase_date" binding:"max=64"`
	PaymentDate   string `json:"payment_date" binding:"max=64"`
	PaymentMethod string `json:"payment_method" binding:"max=64"`

	// Client computed values, compared against the server totals and otherwise ignored
	Subtotal       decimal.NullDecimal `json:"subtotal"`
	DiscountAmount decimal.NullDecimal `json:"discount_amount"`
	TaxAmount      decimal.NullDecimal `json:"tax_amount"`
	Total          decimal.NullDecimal `json:"total"`
	CurrencySymbol string              `json:"currency_symbol"`
}

// ToRecord maps the payload onto a domain record of the given kind
func (r *RecordRequest) ToRecord(kind domain.Kind) *domain.DocumentRecord {
	record := &domain.DocumentRecord{
		Kind:     kind,
		Currency: valueobject.Currency(r.Currency),
		Template: domain.TemplateID(r.Template),
		Issuer: domain.Party{
			Name:     r.Company.Name,
			Address:  r.Company.Address,
			Email:    r.Company.Email,
			Phone:    r.Company.Phone,
			Services: r.Company.Services,
		},
		Items:        make(domain.LineItems, len(r.Items)),
		TaxRate:      r.TaxRate,
		DiscountRate: r.DiscountRate,
		Comments:     r.Comments,
		ClientTotals: domain.ClientTotals{
			Subtotal:       r.Subtotal,
			DiscountAmount: r.DiscountAmount,
			TaxAmount:      r.TaxAmount,
			Total:          r.Total,
			CurrencySymbol: r.CurrencySymbol,
		},
	}

	for i, item := range r.Items {
		record.Items[i] = domain.NewLineItem(item.Description, item.Quantity, item.UnitPrice)
	}

	if r.Signature != nil {
		record.Signature = &domain.Signature{
			UserName: r.Signature.UserName,
			Position: r.Signature.Position,
		}
	}

	switch kind {
	case domain.KindReceipt:
		record.Number = r.ReceiptNumber
		record.Recipient = domain.Party{Name: r.CustomerName, Address: r.CustomerAddress}
		record.PaymentDate = r.PaymentDate
		record.PaymentMethod = r.PaymentMethod
	default:
		record.Number = r.InvoiceNumber
		record.Recipient = domain.Party{Name: r.ClientName, Address: r.ClientAddress}
		record.DueDate = r.DueDate
		record.PurchaseDate = r.PurchaseDate
	}

	return record
}

// =============================================================================
// Totals DTOs
// =============================================================================

// AmountResponse carries a value both raw and formatted for display
type AmountResponse struct {
	Value     string `json:"value"`
	Formatted string `json:"formatted"`
}

// TotalsResponse is the authoritative totals of a record
type TotalsResponse struct {
	Kind           string         `json:"kind"`
	Currency       string         `json:"currency"`
	CurrencySymbol string         `json:"currency_symbol"`
	IncludedItems  int            `json:"included_items"`
	Subtotal       AmountResponse `json:"subtotal"`
	DiscountRate   string         `json:"discount_rate"`
	DiscountAmount AmountResponse `json:"discount_amount"`
	TaxableAmount  AmountResponse `json:"taxable_amount"`
	TaxRate        string         `json:"tax_rate"`
	TaxAmount      AmountResponse `json:"tax_amount"`
	Total          AmountResponse `json:"total"`
}

func toTotalsResponse(kind domain.Kind, currency valueobject.Currency, t domain.Totals) *TotalsResponse {
	symbol := currency.Symbol()
	amount := func(d decimal.Decimal) AmountResponse {
		return AmountResponse{
			Value:     d.String(),
			Formatted: currency.Format(d),
		}
	}
	return &TotalsResponse{
		Kind:           kind.String(),
		Currency:       currency.String(),
		CurrencySymbol: symbol,
		IncludedItems:  t.IncludedItems,
		Subtotal:       amount(t.Subtotal),
		DiscountRate:   t.DiscountRate.String(),
		DiscountAmount: amount(t.DiscountAmount),
		TaxableAmount:  amount(t.TaxableAmount),
		TaxRate:        t.TaxRate.String(),
		TaxAmount:      amount(t.TaxAmount),
		Total:          amount(t.Total),
	}
}

// =============================================================================
// Template DTOs
// =============================================================================

// MarginsDTO represents page margins in millimetres
type MarginsDTO struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// TemplateResponse describes one layout of the catalog
type TemplateResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Kinds       []string   `json:"kinds"`
	PaperSize   string     `json:"paper_size"`
	Orientation string     `json:"orientation"`
	Margins     MarginsDTO `json:"margins"`
	IsDefault   bool       `json:"is_default"`
}

func toTemplateResponse(t domain.TemplateSpec) TemplateResponse {
	kinds := make([]string, len(t.Kinds))
	for i, k := range t.Kinds {
		kinds[i] = k.String()
	}
	return TemplateResponse{
		ID:          t.ID.String(),
		Name:        t.Name,
		Description: t.Description,
		Kinds:       kinds,
		PaperSize:   string(t.PaperSize),
		Orientation: strings.ToLower(string(t.Orientation)),
		Margins: MarginsDTO{
			Top:    t.Margins.Top,
			Right:  t.Margins.Right,
			Bottom: t.Margins.Bottom,
			Left:   t.Margins.Left,
		},
		IsDefault: t.ID == domain.DefaultTemplate,
	}
}
