package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Format renders value as symbol followed by the en-US grouped amount. A
// negative sign goes before the symbol.
func Format(value int64, symbol string) string {
	if value < 0 {
		return "-" + symbol + printer.Sprintf("%d", uint64(-value))
	}
	return symbol + printer.Sprintf("%d", value)
}
