package web

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var priceLocale = language.MustParse("en-IN")

// FormatPrice renders an amount the way the storefront shows it: rupee sign,
// Indian digit grouping, and no decimals for whole amounts.
func FormatPrice(amount float64) string {
	p := message.NewPrinter(priceLocale)
	if amount == math.Trunc(amount) {
		return p.Sprintf("₹%v", number.Decimal(amount, number.MaxFractionDigits(0)))
	}
	return p.Sprintf("₹%v", number.Decimal(amount, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
