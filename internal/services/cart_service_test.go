package services

import (
	"context"
	"errors"
	"testing"

	domain "github.com/trendora/storefront/internal/domain"
)

type stubCartRepository struct {
	getFunc    func(ctx context.Context, cartID string) (domain.Cart, error)
	putFunc    func(ctx context.Context, cart domain.Cart) error
	deleteFunc func(ctx context.Context, cartID string) error
	puts       []domain.Cart
}

func (s *stubCartRepository) GetCart(ctx context.Context, cartID string) (domain.Cart, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, cartID)
	}
	return domain.Cart{ID: cartID, Items: []domain.CartItem{}}, nil
}

func (s *stubCartRepository) PutCart(ctx context.Context, cart domain.Cart) error {
	s.puts = append(s.puts, cart)
	if s.putFunc != nil {
		return s.putFunc(ctx, cart)
	}
	return nil
}

func (s *stubCartRepository) DeleteCart(ctx context.Context, cartID string) error {
	if s.deleteFunc != nil {
		return s.deleteFunc(ctx, cartID)
	}
	return nil
}

type repositoryErrorStub struct {
	notFound    bool
	conflict    bool
	unavailable bool
}

func (e *repositoryErrorStub) Error() string       { return "repository error" }
func (e *repositoryErrorStub) IsNotFound() bool    { return e.notFound }
func (e *repositoryErrorStub) IsConflict() bool    { return e.conflict }
func (e *repositoryErrorStub) IsUnavailable() bool { return e.unavailable }

func newTestCartService(t *testing.T, repo *stubCartRepository) CartService {
	t.Helper()
	service, err := NewCartService(CartServiceDeps{Repository: repo})
	if err != nil {
		t.Fatalf("unexpected error constructing cart service: %v", err)
	}
	return service
}

func TestCartServiceAddItemAppendsNewLine(t *testing.T) {
	repo := &stubCartRepository{}
	service := newTestCartService(t, repo)

	view, err := service.AddItem(context.Background(), AddItemCommand{
		CartID:    "session-1",
		Name:      "  Men's Denim Jacket  ",
		PriceText: "₹1,299",
		ImageURL:  "/img/denim.jpg",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(view.Cart.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(view.Cart.Items))
	}
	item := view.Cart.Items[0]
	if item.ID != "mens-denim-jacket" {
		t.Fatalf("expected derived slug id, got %q", item.ID)
	}
	if item.Name != "Men's Denim Jacket" {
		t.Fatalf("expected trimmed display name, got %q", item.Name)
	}
	if item.Price != 1299 {
		t.Fatalf("expected parsed price 1299, got %v", item.Price)
	}
	if item.PriceText != "₹1,299" {
		t.Fatalf("expected original price text kept, got %q", item.PriceText)
	}
	if item.Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", item.Quantity)
	}
	if item.Category != domain.CategoryMen {
		t.Fatalf("expected category men, got %q", item.Category)
	}
	if len(repo.puts) != 1 {
		t.Fatalf("expected one persist, got %d", len(repo.puts))
	}
}

func TestCartServiceAddItemMergesByIdentifier(t *testing.T) {
	repo := &stubCartRepository{
		getFunc: func(ctx context.Context, cartID string) (domain.Cart, error) {
			return domain.Cart{ID: cartID, Items: []domain.CartItem{
				{ID: "mens-denim-jacket", Name: "Men's Denim Jacket", Price: 1299, PriceText: "₹1,299", Quantity: 1, Category: domain.CategoryMen},
			}}, nil
		},
	}
	service := newTestCartService(t, repo)

	// The card now shows a different price; the stored snapshot must win.
	view, err := service.AddItem(context.Background(), AddItemCommand{
		CartID:    "session-1",
		Name:      "Men's Denim Jacket",
		PriceText: "₹1,599",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(view.Cart.Items) != 1 {
		t.Fatalf("expected merge into one line, got %d", len(view.Cart.Items))
	}
	item := view.Cart.Items[0]
	if item.Quantity != 2 {
		t.Fatalf("expected quantity 2 after repeat add, got %d", item.Quantity)
	}
	if item.Price != 1299 || item.PriceText != "₹1,299" {
		t.Fatalf("expected stored snapshot untouched, got %v %q", item.Price, item.PriceText)
	}
}

func TestCartServiceAddItemRequiresName(t *testing.T) {
	service := newTestCartService(t, &stubCartRepository{})

	_, err := service.AddItem(context.Background(), AddItemCommand{CartID: "session-1", Name: "   "})
	if !errors.Is(err, ErrCartInvalidInput) {
		t.Fatalf("expected ErrCartInvalidInput, got %v", err)
	}
}

func TestCartServiceChangeQuantityClampsToOne(t *testing.T) {
	repo := &stubCartRepository{
		getFunc: func(ctx context.Context, cartID string) (domain.Cart, error) {
			return domain.Cart{ID: cartID, Items: []domain.CartItem{
				{ID: "ceramic-mug", Name: "Ceramic Mug", Price: 349, Quantity: 2, Category: domain.CategoryAll},
			}}, nil
		},
	}
	service := newTestCartService(t, repo)

	view, err := service.ChangeQuantity(context.Background(), ChangeQuantityCommand{CartID: "session-1", Index: 0, Delta: -5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := view.Cart.Items[0].Quantity; got != 1 {
		t.Fatalf("expected quantity clamped to 1, got %d", got)
	}
	if len(repo.puts) != 1 {
		t.Fatalf("expected clamped state persisted, got %d writes", len(repo.puts))
	}
}

func TestCartServiceChangeQuantityOutOfRangeIsNoop(t *testing.T) {
	repo := &stubCartRepository{
		getFunc: func(ctx context.Context, cartID string) (domain.Cart, error) {
			return domain.Cart{ID: cartID, Items: []domain.CartItem{
				{ID: "ceramic-mug", Name: "Ceramic Mug", Price: 349, Quantity: 1, Category: domain.CategoryAll},
			}}, nil
		},
	}
	service := newTestCartService(t, repo)

	view, err := service.ChangeQuantity(context.Background(), ChangeQuantityCommand{CartID: "session-1", Index: 5, Delta: 1})
	if err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
	if view.Cart.Items[0].Quantity != 1 {
		t.Fatalf("expected cart unchanged, got %#v", view.Cart.Items)
	}
	if len(repo.puts) != 0 {
		t.Fatalf("expected no persist for out-of-range index, got %d", len(repo.puts))
	}
}

func TestCartServiceRemoveItemShiftsRemainder(t *testing.T) {
	repo := &stubCartRepository{
		getFunc: func(ctx context.Context, cartID string) (domain.Cart, error) {
			return domain.Cart{ID: cartID, Items: []domain.CartItem{
				{ID: "mens-denim-jacket", Name: "Men's Denim Jacket", Price: 1299, Quantity: 1, Category: domain.CategoryMen},
				{ID: "ceramic-mug", Name: "Ceramic Mug", Price: 349, Quantity: 1, Category: domain.CategoryAll},
			}}, nil
		},
	}
	service := newTestCartService(t, repo)

	view, err := service.RemoveItem(context.Background(), RemoveItemCommand{CartID: "session-1", Index: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Cart.Items) != 1 {
		t.Fatalf("expected 1 item remaining, got %d", len(view.Cart.Items))
	}
	if view.Cart.Items[0].ID != "ceramic-mug" {
		t.Fatalf("expected second item now at index 0, got %q", view.Cart.Items[0].ID)
	}
}

func TestCartServiceRemoveItemOutOfRangeIsNoop(t *testing.T) {
	repo := &stubCartRepository{}
	service := newTestCartService(t, repo)

	view, err := service.RemoveItem(context.Background(), RemoveItemCommand{CartID: "session-1", Index: 0})
	if err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
	if len(view.Cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %#v", view.Cart.Items)
	}
	if len(repo.puts) != 0 {
		t.Fatalf("expected no persist, got %d", len(repo.puts))
	}
}

func TestCartServiceGetCartDerivesSummaryAndBadge(t *testing.T) {
	repo := &stubCartRepository{
		getFunc: func(ctx context.Context, cartID string) (domain.Cart, error) {
			return domain.Cart{ID: cartID, Items: []domain.CartItem{
				{ID: "a", Name: "A", Price: 100, Quantity: 2, Category: domain.CategoryAll},
				{ID: "b", Name: "B", Price: 50, Quantity: 1, Category: domain.CategoryAll},
			}}, nil
		},
	}
	service := newTestCartService(t, repo)

	view, err := service.GetCart(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Summary.Subtotal != 250 || view.Summary.Shipping != 49 || view.Summary.Total != 299 {
		t.Fatalf("unexpected summary: %+v", view.Summary)
	}
	if view.ItemCount != 3 {
		t.Fatalf("expected badge count 3, got %d", view.ItemCount)
	}
}

func TestCartServiceGetCartEmptySummaryIsZero(t *testing.T) {
	service := newTestCartService(t, &stubCartRepository{})

	view, err := service.GetCart(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Summary.Subtotal != 0 || view.Summary.Shipping != 0 || view.Summary.Total != 0 {
		t.Fatalf("expected zero summary for empty cart, got %+v", view.Summary)
	}
}

func TestCartServiceTranslatesRepositoryErrors(t *testing.T) {
	repo := &stubCartRepository{
		getFunc: func(ctx context.Context, cartID string) (domain.Cart, error) {
			return domain.Cart{}, &repositoryErrorStub{unavailable: true}
		},
	}
	service := newTestCartService(t, repo)

	_, err := service.GetCart(context.Background(), "session-1")
	if !errors.Is(err, ErrCartUnavailable) {
		t.Fatalf("expected ErrCartUnavailable, got %v", err)
	}
}

func TestCartServiceRequiresCartID(t *testing.T) {
	service := newTestCartService(t, &stubCartRepository{})

	if _, err := service.GetCart(context.Background(), " "); !errors.Is(err, ErrCartInvalidInput) {
		t.Fatalf("expected ErrCartInvalidInput, got %v", err)
	}
	if err := service.ClearCart(context.Background(), ""); !errors.Is(err, ErrCartInvalidInput) {
		t.Fatalf("expected ErrCartInvalidInput, got %v", err)
	}
}

func TestNewCartServiceRequiresRepository(t *testing.T) {
	if _, err := NewCartService(CartServiceDeps{}); err == nil {
		t.Fatalf("expected constructor error without repository")
	}
}
