package services

// DefaultShippingFee is the flat delivery charge applied to non-empty carts.
const DefaultShippingFee = 49

// FlatRateSummaryCalculator implements the storefront pricing policy:
// subtotal is the sum of price times quantity over all lines, shipping is a
// flat fee whenever the subtotal is positive, and total is their sum. No
// taxes, discounts, or tiered shipping. Totals are always recomputed from the
// full item list, never maintained incrementally.
type FlatRateSummaryCalculator struct {
	fee float64
}

// NewFlatRateSummaryCalculator constructs a calculator with the given flat
// shipping fee. Non-positive fees fall back to the default.
func NewFlatRateSummaryCalculator(fee float64) *FlatRateSummaryCalculator {
	if fee <= 0 {
		fee = DefaultShippingFee
	}
	return &FlatRateSummaryCalculator{fee: fee}
}

// Calculate derives the order summary from the item list.
func (c *FlatRateSummaryCalculator) Calculate(items []CartItem) OrderSummary {
	fee := float64(DefaultShippingFee)
	if c != nil && c.fee > 0 {
		fee = c.fee
	}

	var subtotal float64
	for _, item := range items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		subtotal += item.Price * float64(qty)
	}

	summary := OrderSummary{Subtotal: subtotal}
	if subtotal > 0 {
		summary.Shipping = fee
	}
	summary.Total = summary.Subtotal + summary.Shipping
	return summary
}
