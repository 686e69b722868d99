package document

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	hundred    = decimal.NewFromInt(100)
	centsDelta = decimal.New(1, -2)
	maxAmount  = decimal.New(1, MaxAmountDigits)
)

// Bounds on submitted numbers. Amounts must stay below 10^MaxAmountDigits
// and carry at most MaxFractionDigits significant decimals.
const (
	MaxAmountDigits   = 12
	MaxFractionDigits = 4
	// trailing zeros tolerated past the last significant decimal, e.g. "9.990000"
	maxScale = 18
)

// Totals is the authoritative financial summary of a record.
// Every amount keeps full precision; rounding is a display concern.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountRate   decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	TaxRate        decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	IncludedItems  int
}

// CalculateTotals derives the totals of items.
// A missing rate counts as zero. Negative, oversized or overly precise
// quantities and prices, and rates outside [0, 100], are rejected with a
// ValidationError before any arithmetic.
func CalculateTotals(items []LineItem, taxRate, discountRate decimal.NullDecimal) (Totals, error) {
	verr := &ValidationError{}

	for i, item := range items {
		checkAmount(verr, fmt.Sprintf("items[%d].quantity", i), "quantity", item.Quantity)
		checkAmount(verr, fmt.Sprintf("items[%d].unit_price", i), "unit price", item.UnitPrice)
	}
	tax := rateOrZero(taxRate)
	discount := rateOrZero(discountRate)
	checkRate(verr, "tax_rate", tax)
	checkRate(verr, "discount_rate", discount)
	if err := verr.OrNil(); err != nil {
		return Totals{}, err
	}

	t := Totals{
		Subtotal:     decimal.Zero,
		TaxRate:      tax,
		DiscountRate: discount,
	}
	for _, item := range items {
		if !item.IsIncluded() {
			continue
		}
		t.Subtotal = t.Subtotal.Add(item.LineTotal())
		t.IncludedItems++
	}
	t.DiscountAmount = t.Subtotal.Mul(discount).Div(hundred)
	t.TaxableAmount = t.Subtotal.Sub(t.DiscountAmount)
	t.TaxAmount = t.TaxableAmount.Mul(tax).Div(hundred)
	t.Total = t.TaxableAmount.Add(t.TaxAmount)
	return t, nil
}

// CalculateRecordTotals derives the totals of a record
func CalculateRecordTotals(r *DocumentRecord) (Totals, error) {
	return CalculateTotals(r.Items, r.TaxRate, r.DiscountRate)
}

// HasDiscount reports whether a discount line should be shown
func (t Totals) HasDiscount() bool {
	return t.DiscountRate.IsPositive()
}

// HasTax reports whether a tax line should be shown
func (t Totals) HasTax() bool {
	return t.TaxRate.IsPositive()
}

// Discrepancy records a client total that disagrees with the computed value
type Discrepancy struct {
	Field    string
	Client   decimal.Decimal
	Computed decimal.Decimal
}

// Reconcile compares client supplied totals, at cent precision, with t.
// Claims outside the accepted amount range are skipped.
func (t Totals) Reconcile(client ClientTotals) []Discrepancy {
	var out []Discrepancy
	check := func(field string, claimed decimal.NullDecimal, computed decimal.Decimal) {
		if !claimed.Valid || !boundedMagnitude(claimed.Decimal) {
			return
		}
		if claimed.Decimal.Sub(computed).Abs().GreaterThanOrEqual(centsDelta) {
			out = append(out, Discrepancy{Field: field, Client: claimed.Decimal, Computed: computed})
		}
	}
	check("subtotal", client.Subtotal, t.Subtotal)
	check("discount_amount", client.DiscountAmount, t.DiscountAmount)
	check("tax_amount", client.TaxAmount, t.TaxAmount)
	check("total", client.Total, t.Total)
	return out
}

func rateOrZero(rate decimal.NullDecimal) decimal.Decimal {
	if !rate.Valid {
		return decimal.Zero
	}
	return rate.Decimal
}

// AmountInRange reports whether d is below 10^MaxAmountDigits in magnitude
// with at most MaxFractionDigits significant decimals. The exponent is
// checked first: comparing or printing a value like 1e50000000 expands it
// to fifty million digits.
func AmountInRange(d decimal.Decimal) bool {
	return boundedMagnitude(d) && d.Truncate(MaxFractionDigits).Equal(d)
}

func boundedMagnitude(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp > MaxAmountDigits || exp < -maxScale {
		return false
	}
	return d.Abs().LessThan(maxAmount)
}

func checkAmount(verr *ValidationError, field, label string, d decimal.Decimal) {
	switch {
	case d.IsNegative():
		verr.Add(field, CodeOutOfRange, label+" cannot be negative")
	case !AmountInRange(d):
		verr.Add(field, CodeOutOfRange, fmt.Sprintf("%s must be below 10^%d with at most %d decimals",
			label, MaxAmountDigits, MaxFractionDigits))
	}
}

func checkRate(verr *ValidationError, field string, rate decimal.Decimal) {
	switch {
	case !AmountInRange(rate.Abs()):
		verr.Add(field, CodeOutOfRange, fmt.Sprintf("rate must be between 0 and 100 with at most %d decimals", MaxFractionDigits))
	case rate.IsNegative() || rate.GreaterThan(hundred):
		verr.Add(field, CodeOutOfRange, "rate must be between 0 and 100")
	}
}
