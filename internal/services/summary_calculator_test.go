package services

import (
	"testing"

	domain "github.com/trendora/storefront/internal/domain"
)

func TestFlatRateSummaryCalculator(t *testing.T) {
	calc := NewFlatRateSummaryCalculator(DefaultShippingFee)

	summary := calc.Calculate([]domain.CartItem{
		{Price: 100, Quantity: 2},
		{Price: 50, Quantity: 1},
	})
	if summary.Subtotal != 250 {
		t.Fatalf("expected subtotal 250, got %v", summary.Subtotal)
	}
	if summary.Shipping != 49 {
		t.Fatalf("expected flat shipping 49, got %v", summary.Shipping)
	}
	if summary.Total != 299 {
		t.Fatalf("expected total 299, got %v", summary.Total)
	}
}

func TestFlatRateSummaryCalculatorEmptyCart(t *testing.T) {
	calc := NewFlatRateSummaryCalculator(DefaultShippingFee)

	summary := calc.Calculate(nil)
	if summary.Subtotal != 0 || summary.Shipping != 0 || summary.Total != 0 {
		t.Fatalf("expected all-zero summary for empty cart, got %+v", summary)
	}
}

func TestFlatRateSummaryCalculatorCustomFee(t *testing.T) {
	calc := NewFlatRateSummaryCalculator(99)

	summary := calc.Calculate([]domain.CartItem{{Price: 10, Quantity: 1}})
	if summary.Shipping != 99 {
		t.Fatalf("expected custom fee 99, got %v", summary.Shipping)
	}
	if summary.Total != 109 {
		t.Fatalf("expected total 109, got %v", summary.Total)
	}
}

func TestFlatRateSummaryCalculatorTreatsMissingQuantityAsOne(t *testing.T) {
	calc := NewFlatRateSummaryCalculator(DefaultShippingFee)

	summary := calc.Calculate([]domain.CartItem{{Price: 100, Quantity: 0}})
	if summary.Subtotal != 100 {
		t.Fatalf("expected subtotal 100 for zero quantity, got %v", summary.Subtotal)
	}
}
