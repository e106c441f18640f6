package types

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is assumed for lines that carry no currency tag
const DefaultCurrency = "USD"

// CURRENCY_CODES_SYMBOLS is a map of 3 digit ISO currency codes to their symbols
var CURRENCY_CODES_SYMBOLS = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
	"aud": "AU$",
	"cad": "CA$",
	"chf": "CHF",
	"sek": "kr",
	"nok": "kr",
	"dkk": "kr",
	"jpy": "¥",
	"cny": "¥",
	"inr": "₹",
	"sgd": "S$",
	"hkd": "HK$",
	"nzd": "NZ$",
}

// GetCurrencySymbol returns the symbol for a given currency code
// if the code is not found, it returns the code itself
func GetCurrencySymbol(code string) string {
	if symbol, ok := CURRENCY_CODES_SYMBOLS[strings.ToLower(code)]; ok {
		return symbol
	}
	return code
}

// IsMatchingCurrency compares two currency codes case insensitively
func IsMatchingCurrency(a, b string) bool {
	return strings.EqualFold(a, b)
}

// FormatAmount renders an amount with its currency symbol using two
// decimal places, e.g. "$1,234.50" becomes "$1234.50"
func FormatAmount(amount decimal.Decimal, currency string) string {
	return fmt.Sprintf("%s%s", GetCurrencySymbol(currency), amount.StringFixed(2))
}

// FormatWithCode renders an amount followed by its ISO code, e.g. "1234.50 USD"
func FormatWithCode(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	return fmt.Sprintf("%s %s", amount.StringFixed(2), strings.ToUpper(currency))
}

// conversionRates holds static indicative rates against USD. Rates are
// display helpers only: the reconciliation engine never converts amounts.
var conversionRates = map[string]decimal.Decimal{
	"usd": decimal.NewFromInt(1),
	"eur": decimal.NewFromFloat(1.08),
	"gbp": decimal.NewFromFloat(1.27),
	"sek": decimal.NewFromFloat(0.095),
	"nok": decimal.NewFromFloat(0.094),
	"dkk": decimal.NewFromFloat(0.14),
	"jpy": decimal.NewFromFloat(0.0067),
	"cny": decimal.NewFromFloat(0.14),
	"inr": decimal.NewFromFloat(0.012),
}

// ConversionRate returns the indicative rate from one currency to another.
// Unknown pairs resolve to 1 so callers degrade to a passthrough.
func ConversionRate(from, to string) decimal.Decimal {
	one := decimal.NewFromInt(1)
	fromRate, ok := conversionRates[strings.ToLower(from)]
	if !ok {
		return one
	}
	toRate, ok := conversionRates[strings.ToLower(to)]
	if !ok || toRate.IsZero() {
		return one
	}
	return fromRate.Div(toRate)
}
