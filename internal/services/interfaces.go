package services

import (
	"context"

	domain "github.com/trendora/storefront/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Cart         = domain.Cart
	CartItem     = domain.CartItem
	Category     = domain.Category
	OrderSummary = domain.OrderSummary
	Product      = domain.Product
)

// CartView packages a cart with the figures derived from it on every read:
// the order summary and the badge count. Views are always rebuilt from the
// just-read state, never cached.
type CartView struct {
	Cart      Cart
	Summary   OrderSummary
	ItemCount int
}

// AddItemCommand carries the raw product-card fields for an add-to-cart
// action. Identifier, numeric price, and category are derived by the service.
type AddItemCommand struct {
	CartID    string
	Name      string
	PriceText string
	ImageURL  string
}

// ChangeQuantityCommand adjusts the quantity of the item at a positional
// index by Delta. Indices refer to the current persisted order.
type ChangeQuantityCommand struct {
	CartID string
	Index  int
	Delta  int
}

// RemoveItemCommand deletes the item at a positional index.
type RemoveItemCommand struct {
	CartID string
	Index  int
}

// CartService manages mutable cart state: every mutation reads the persisted
// list, transforms it, writes it back, and returns the refreshed view.
type CartService interface {
	GetCart(ctx context.Context, cartID string) (CartView, error)
	AddItem(ctx context.Context, cmd AddItemCommand) (CartView, error)
	ChangeQuantity(ctx context.Context, cmd ChangeQuantityCommand) (CartView, error)
	RemoveItem(ctx context.Context, cmd RemoveItemCommand) (CartView, error)
	ClearCart(ctx context.Context, cartID string) error
}

// SummaryCalculator derives order totals from a cart's item list.
type SummaryCalculator interface {
	Calculate(items []CartItem) OrderSummary
}

// ProductFilter narrows the shop grid to a category selection.
type ProductFilter struct {
	Category Category
}

// CatalogService serves the product grid backing the shop page.
type CatalogService interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
}
