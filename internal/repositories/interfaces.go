package repositories

import (
	"context"

	domain "github.com/trendora/storefront/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// CartRepository owns persistence of per-session cart item lists. GetCart
// treats an absent or unreadable record as an empty cart rather than an
// error; only backend failures surface as RepositoryError values.
type CartRepository interface {
	GetCart(ctx context.Context, cartID string) (domain.Cart, error)
	PutCart(ctx context.Context, cart domain.Cart) error
	DeleteCart(ctx context.Context, cartID string) error
}

// CatalogRepository lists the products rendered on the shop page.
type CatalogRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}
