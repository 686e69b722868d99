package valueobject

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/encoding/charmap"
)

// Currency represents a 3-letter currency code (ISO 4217 style)
type Currency string

const (
	USD Currency = "USD" // US Dollar (default)
	EUR Currency = "EUR" // Euro
	GBP Currency = "GBP" // British Pound
	JPY Currency = "JPY" // Japanese Yen
	NGN Currency = "NGN" // Nigerian Naira
	INR Currency = "INR" // Indian Rupee
)

// DefaultCurrency is used when a record does not name a currency
const DefaultCurrency = USD

// ErrInvalidCurrencyCode is returned for codes that are not three letters
var ErrInvalidCurrencyCode = errors.New("currency code must be three letters")

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// currencySymbols is the display symbol table. Codes missing here display as the code.
var currencySymbols = map[Currency]string{
	USD:   "$",
	EUR:   "€",
	GBP:   "£",
	JPY:   "¥",
	NGN:   "₦",
	INR:   "₹",
	"CNY": "¥",
	"CAD": "C$",
	"AUD": "A$",
	"NZD": "NZ$",
	"HKD": "HK$",
	"SGD": "S$",
	"CHF": "CHF",
	"ZAR": "R",
	"KES": "KSh",
	"GHS": "GH₵",
	"BRL": "R$",
	"MXN": "MX$",
	"KRW": "₩",
	"RUB": "₽",
	"TRY": "₺",
	"PHP": "₱",
	"ILS": "₪",
	"VND": "₫",
	"THB": "฿",
	"PLN": "zł",
	"SEK": "kr",
	"NOK": "kr",
	"DKK": "kr",
	"AED": "AED",
}

// ParseCurrency normalizes a currency code. Empty input yields DefaultCurrency.
// Any well-formed code is accepted, known or not.
func ParseCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency, nil
	}
	if !currencyCodePattern.MatchString(code) {
		return "", ErrInvalidCurrencyCode
	}
	return Currency(code), nil
}

// String returns the currency code
func (c Currency) String() string {
	return string(c)
}

// Symbol returns the display symbol, falling back to the code itself
func (c Currency) Symbol() string {
	if sym, ok := currencySymbols[c]; ok {
		return sym
	}
	return string(c)
}

// HasKnownSymbol reports whether the symbol table carries an entry for c
func (c Currency) HasKnownSymbol() bool {
	_, ok := currencySymbols[c]
	return ok
}

// IsISO reports whether c is a registered ISO 4217 code
func (c Currency) IsISO() bool {
	_, err := currency.ParseISO(string(c))
	return err == nil
}

// PDFSafeSymbol returns a symbol that can be drawn with the PDF core fonts.
// Symbols outside Windows-1252 are replaced by the code.
func (c Currency) PDFSafeSymbol() string {
	sym := c.Symbol()
	for _, r := range sym {
		if _, ok := charmap.Windows1252.EncodeRune(r); !ok {
			return string(c)
		}
	}
	return sym
}

// AllKnownCurrencies returns every currency with a dedicated symbol
func AllKnownCurrencies() []Currency {
	out := make([]Currency, 0, len(currencySymbols))
	for c := range currencySymbols {
		out = append(out, c)
	}
	return out
}
