package document

import (
	"errors"
	"strings"
	"testing"

	"github.com/invoicegen/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInvoice() *DocumentRecord {
	return &DocumentRecord{
		Kind:      KindInvoice,
		Number:    "INV-001",
		Issuer:    Party{Name: "Acme Ltd"},
		Recipient: Party{Name: "Globex"},
		Items: LineItems{
			item("Widget", "2", "9.99"),
			item("Service", "1", "50.00"),
		},
		TaxRate:      rate("10"),
		DiscountRate: rate("5"),
	}
}

func requireValidationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	return verr
}

func TestValidateRecord_Valid(t *testing.T) {
	r := validInvoice()
	require.NoError(t, ValidateRecord(r))

	assert.Equal(t, valueobject.USD, r.Currency)
	assert.Equal(t, TemplateClassic, r.Template)
}

func TestValidateRecord_Normalizes(t *testing.T) {
	r := validInvoice()
	r.Number = "  INV-002  "
	r.Currency = "eur"
	r.Template = " Modern "

	require.NoError(t, ValidateRecord(r))
	assert.Equal(t, "INV-002", r.Number)
	assert.Equal(t, valueobject.EUR, r.Currency)
	assert.Equal(t, TemplateModern, r.Template)
}

func TestValidateRecord_NoValidItems(t *testing.T) {
	tests := []struct {
		name  string
		items LineItems
	}{
		{"empty list", nil},
		{"only incomplete rows", LineItems{item("", "1", "10"), item("Widget", "0", "10")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validInvoice()
			r.Items = tt.items

			verr := requireValidationError(t, ValidateRecord(r))
			require.True(t, verr.HasField("items"))
			for _, f := range verr.Fields {
				if f.Field == "items" {
					assert.Equal(t, "no valid items", f.Message)
					assert.Equal(t, CodeNoValidItems, f.Code)
				}
			}
		})
	}
}

func TestValidateRecord_RequiredFields(t *testing.T) {
	t.Run("missing number", func(t *testing.T) {
		r := validInvoice()
		r.Number = "   "
		verr := requireValidationError(t, ValidateRecord(r))
		assert.True(t, verr.HasField("invoice_number"))
	})

	t.Run("receipt number field name", func(t *testing.T) {
		r := validInvoice()
		r.Kind = KindReceipt
		r.Number = ""
		verr := requireValidationError(t, ValidateRecord(r))
		assert.True(t, verr.HasField("receipt_number"))
	})

	t.Run("no party names", func(t *testing.T) {
		r := validInvoice()
		r.Issuer.Name = ""
		r.Recipient.Name = " "
		verr := requireValidationError(t, ValidateRecord(r))
		assert.True(t, verr.HasField("company.name"))
	})

	t.Run("one party name is enough", func(t *testing.T) {
		r := validInvoice()
		r.Issuer.Name = ""
		assert.NoError(t, ValidateRecord(r))
	})

	t.Run("reports all failures together", func(t *testing.T) {
		r := validInvoice()
		r.Number = ""
		r.Issuer.Name = ""
		r.Recipient.Name = ""
		r.Items = nil
		verr := requireValidationError(t, ValidateRecord(r))
		assert.Len(t, verr.Fields, 3)
	})
}

func TestValidateRecord_Currency(t *testing.T) {
	t.Run("unknown well formed code is accepted", func(t *testing.T) {
		r := validInvoice()
		r.Currency = "XYZ"
		require.NoError(t, ValidateRecord(r))
		assert.Equal(t, "XYZ", r.Currency.Symbol())
	})

	t.Run("malformed code is rejected", func(t *testing.T) {
		r := validInvoice()
		r.Currency = "DOLLARS"
		verr := requireValidationError(t, ValidateRecord(r))
		assert.True(t, verr.HasField("currency"))
	})
}

func TestValidateRecord_Template(t *testing.T) {
	t.Run("thermal is receipt only", func(t *testing.T) {
		r := validInvoice()
		r.Template = TemplateThermal
		verr := requireValidationError(t, ValidateRecord(r))
		assert.True(t, verr.HasField("template"))

		r = validInvoice()
		r.Kind = KindReceipt
		r.Template = TemplateThermal
		assert.NoError(t, ValidateRecord(r))
	})

	t.Run("unknown template", func(t *testing.T) {
		r := validInvoice()
		r.Template = "gothic"
		verr := requireValidationError(t, ValidateRecord(r))
		require.True(t, verr.HasField("template"))
		assert.Contains(t, verr.Error(), "classic")
	})
}

func TestValidateRecord_NumericChecks(t *testing.T) {
	r := validInvoice()
	r.TaxRate = rate("120")
	r.Items = append(r.Items, item("Refund", "-1", "5"))

	verr := requireValidationError(t, ValidateRecord(r))
	assert.True(t, verr.HasField("tax_rate"))
	assert.True(t, verr.HasField("items[2].quantity"))
}

func TestValidateRecord_Limits(t *testing.T) {
	r := validInvoice()
	r.Comments = strings.Repeat("x", MaxCommentsLength+1)
	verr := requireValidationError(t, ValidateRecord(r))
	assert.True(t, verr.HasField("comments"))

	r = validInvoice()
	r.Items = make(LineItems, MaxItems+1)
	verr = requireValidationError(t, ValidateRecord(r))
	assert.True(t, verr.HasField("items"))
}

func TestValidateRecord_InvalidKind(t *testing.T) {
	r := validInvoice()
	r.Kind = "quote"
	verr := requireValidationError(t, ValidateRecord(r))
	assert.True(t, verr.HasField("kind"))
}
