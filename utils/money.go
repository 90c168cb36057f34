package utils

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var bdtPrinter = message.NewPrinter(language.English)

// FormatBDT renders a fee amount with thousand separators, e.g. "10,000 BDT".
func FormatBDT(amount int) string {
	return bdtPrinter.Sprintf("%d BDT", amount)
}
