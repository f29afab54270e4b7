package view

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// FormatUSD renders a dollar amount with two decimals and thousands separators.
func FormatUSD(v float64) string {
	return "$" + printer.Sprintf("%.2f", v)
}

// FormatBalance renders a token amount with up to three decimals and thousands separators.
func FormatBalance(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}
