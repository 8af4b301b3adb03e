package util

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var enPrinter = message.NewPrinter(language.English)

// FormatMoney renders whole dollars with thousands separators: 3500000 -> "$3,500,000".
func FormatMoney(amount int64) string {
	return enPrinter.Sprintf("$%d", amount)
}

// FormatNumber renders n with thousands separators.
func FormatNumber(n int64) string {
	return enPrinter.Sprintf("%d", n)
}
