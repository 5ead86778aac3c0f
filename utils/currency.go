package utils

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency is a display currency; Rate converts from KES
type Currency struct {
	Code   string  `json:"code"`
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Rate   float64 `json:"rate"`
}

const BaseCurrency = "KES"

var currencies = []Currency{
	{Code: "KES", Symbol: "KSh", Name: "Kenya | KES KSh", Rate: 1},
	{Code: "USD", Symbol: "$", Name: "United States | USD $", Rate: 0.0077},
	{Code: "EUR", Symbol: "€", Name: "Eurozone | EUR €", Rate: 0.0071},
	{Code: "GBP", Symbol: "£", Name: "United Kingdom | GBP £", Rate: 0.0061},
}

var pricePrinter = message.NewPrinter(language.English)

// Currencies returns the supported display currencies, KES first
func Currencies() []Currency {
	out := make([]Currency, len(currencies))
	copy(out, currencies)
	return out
}

// LookupCurrency finds a currency by code, case-insensitively. Unknown codes resolve to KES.
func LookupCurrency(code string) (Currency, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range currencies {
		if c.Code == code {
			return c, true
		}
	}
	return currencies[0], false
}

func ConvertPrice(priceKES float64, code string) float64 {
	c, _ := LookupCurrency(code)
	return priceKES * c.Rate
}

// FormatPrice renders a KES price in the given currency, e.g. "$1,234.50"
func FormatPrice(priceKES float64, code string) string {
	c, _ := LookupCurrency(code)
	return c.Symbol + pricePrinter.Sprintf("%.2f", priceKES*c.Rate)
}

// CurrencyLabel is the code shown next to amounts in emails
func CurrencyLabel(code string) string {
	if code == "kes" {
		return "KES"
	}
	return strings.ToUpper(code)
}
