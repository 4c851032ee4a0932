package suggest

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// priceFormatter renders cent amounts as locale-aware currency strings
// ("$24.50", "24,50 €") for product suggestion decoration.
type priceFormatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// newPriceFormatter builds a formatter for the given BCP 47 locale and
// ISO 4217 currency code. Both are validated at config load; unparseable
// values here fall back to en-US / USD rather than failing the engine.
func newPriceFormatter(locale, currencyCode string) *priceFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		unit = currency.USD
	}
	return &priceFormatter{
		printer: message.NewPrinter(tag),
		unit:    unit,
	}
}

// Format renders a cent amount in the configured locale and currency.
func (f *priceFormatter) Format(cents int64) string {
	amount := f.unit.Amount(float64(cents) / 100)
	return f.printer.Sprint(currency.Symbol(amount))
}
