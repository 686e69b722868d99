package valueobject

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DisplayPlaces is the number of fraction digits shown for monetary amounts
const DisplayPlaces = 2

// FormatAmount renders d with two fraction digits and thousands separators.
// Rounding is half away from zero.
func FormatAmount(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(DisplayPlaces)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if d.Round(DisplayPlaces).IsNegative() {
		b.WriteByte('-')
	}
	for i, ch := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// FormatWithSymbol prefixes FormatAmount with symbol, keeping the sign in front.
// Symbols longer than one rune that end in a letter are separated by a space ("CHF 10.00").
func FormatWithSymbol(d decimal.Decimal, symbol string) string {
	amount, negative := strings.CutPrefix(FormatAmount(d), "-")
	if needsSeparator(symbol) {
		amount = " " + amount
	}
	if negative {
		return "-" + symbol + amount
	}
	return symbol + amount
}

// Format renders d in currency c with its display symbol, e.g. "$1,234.50"
func (c Currency) Format(d decimal.Decimal) string {
	return FormatWithSymbol(d, c.Symbol())
}

func needsSeparator(symbol string) bool {
	runes := []rune(symbol)
	if len(runes) < 2 {
		return false
	}
	last := runes[len(runes)-1]
	return (last >= 'A' && last <= 'Z') || (last >= 'a' && last <= 'z')
}
