package domain

import (
	"math"
	"regexp"
	"strconv"
)

var priceStrip = regexp.MustCompile(`[^\d.]`)

// ParsePrice extracts the numeric amount from a formatted price string such
// as "₹1,299" or "$12.50". Currency symbols, grouping separators, and
// whitespace are stripped before parsing. Malformed or empty input degrades
// to 0; the storefront never surfaces a parse failure.
func ParsePrice(text string) float64 {
	cleaned := priceStrip.ReplaceAllString(text, "")
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
