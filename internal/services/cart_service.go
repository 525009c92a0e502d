package services

import (
	"context"
	"errors"
	"strings"

	domain "github.com/trendora/storefront/internal/domain"
	"github.com/trendora/storefront/internal/repositories"
)

var errCartRepositoryRequired = errors.New("cart service: repository is required")

// ErrCartInvalidInput indicates the caller supplied invalid input.
var ErrCartInvalidInput = errors.New("cart service: invalid input")

// ErrCartUnavailable indicates the cart service cannot fulfil the request due to backend issues.
var ErrCartUnavailable = errors.New("cart service: unavailable")

// CartServiceDeps wires the repository and summary dependencies for cart operations.
type CartServiceDeps struct {
	Repository repositories.CartRepository
	Summary    SummaryCalculator
	Logger     func(context.Context, string, map[string]any)
}

type cartService struct {
	repo    repositories.CartRepository
	summary SummaryCalculator
	logger  func(context.Context, string, map[string]any)
}

// NewCartService constructs a CartService enforcing dependency validation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Repository == nil {
		return nil, errCartRepositoryRequired
	}

	summary := deps.Summary
	if summary == nil {
		summary = NewFlatRateSummaryCalculator(DefaultShippingFee)
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &cartService{
		repo:    deps.Repository,
		summary: summary,
		logger:  logger,
	}, nil
}

// GetCart loads the cart and derives its summary and badge count.
func (s *cartService) GetCart(ctx context.Context, cartID string) (CartView, error) {
	if s == nil || s.repo == nil {
		return CartView{}, ErrCartUnavailable
	}

	id := strings.TrimSpace(cartID)
	if id == "" {
		return CartView{}, ErrCartInvalidInput
	}

	cart, err := s.repo.GetCart(ctx, id)
	if err != nil {
		return CartView{}, s.translateRepoError(err)
	}
	return s.buildView(normaliseCart(cart, id)), nil
}

// AddItem derives the identifier, numeric price, and category from the raw
// card fields, then merges by identifier: an existing line has its quantity
// incremented with its stored snapshot left untouched, a new line is appended
// with quantity 1.
func (s *cartService) AddItem(ctx context.Context, cmd AddItemCommand) (CartView, error) {
	if s == nil || s.repo == nil {
		return CartView{}, ErrCartUnavailable
	}

	cartID := strings.TrimSpace(cmd.CartID)
	if cartID == "" {
		return CartView{}, ErrCartInvalidInput
	}

	name := strings.TrimSpace(cmd.Name)
	id := domain.Slugify(name)
	if id == "" {
		return CartView{}, ErrCartInvalidInput
	}

	cart, err := s.repo.GetCart(ctx, cartID)
	if err != nil {
		return CartView{}, s.translateRepoError(err)
	}
	cart = normaliseCart(cart, cartID)

	if idx := indexOfItem(cart.Items, id); idx >= 0 {
		cart.Items[idx].Quantity++
	} else {
		priceText := strings.TrimSpace(cmd.PriceText)
		cart.Items = append(cart.Items, domain.CartItem{
			ID:        id,
			Name:      name,
			Price:     domain.ParsePrice(priceText),
			PriceText: priceText,
			Image:     strings.TrimSpace(cmd.ImageURL),
			Quantity:  1,
			Category:  domain.CategoryFromTitle(name),
		})
	}

	if err := s.repo.PutCart(ctx, cart); err != nil {
		return CartView{}, s.translateRepoError(err)
	}

	s.logger(ctx, "cart.item_added", map[string]any{
		"cartID": cartID,
		"itemID": id,
	})
	return s.buildView(cart), nil
}

// ChangeQuantity adds Delta to the quantity of the item at the given
// positional index, clamped to a minimum of 1. An out-of-range index is a
// silent no-op returning the unchanged cart.
func (s *cartService) ChangeQuantity(ctx context.Context, cmd ChangeQuantityCommand) (CartView, error) {
	if s == nil || s.repo == nil {
		return CartView{}, ErrCartUnavailable
	}

	cartID := strings.TrimSpace(cmd.CartID)
	if cartID == "" {
		return CartView{}, ErrCartInvalidInput
	}

	cart, err := s.repo.GetCart(ctx, cartID)
	if err != nil {
		return CartView{}, s.translateRepoError(err)
	}
	cart = normaliseCart(cart, cartID)

	if cmd.Index < 0 || cmd.Index >= len(cart.Items) {
		s.logger(ctx, "cart.quantity_index_out_of_range", map[string]any{
			"cartID": cartID,
			"index":  cmd.Index,
			"length": len(cart.Items),
		})
		return s.buildView(cart), nil
	}

	qty := cart.Items[cmd.Index].Quantity + cmd.Delta
	if qty < 1 {
		qty = 1
	}
	cart.Items[cmd.Index].Quantity = qty

	if err := s.repo.PutCart(ctx, cart); err != nil {
		return CartView{}, s.translateRepoError(err)
	}
	return s.buildView(cart), nil
}

// RemoveItem deletes the item at the given positional index. An out-of-range
// index is a silent no-op returning the unchanged cart.
func (s *cartService) RemoveItem(ctx context.Context, cmd RemoveItemCommand) (CartView, error) {
	if s == nil || s.repo == nil {
		return CartView{}, ErrCartUnavailable
	}

	cartID := strings.TrimSpace(cmd.CartID)
	if cartID == "" {
		return CartView{}, ErrCartInvalidInput
	}

	cart, err := s.repo.GetCart(ctx, cartID)
	if err != nil {
		return CartView{}, s.translateRepoError(err)
	}
	cart = normaliseCart(cart, cartID)

	if cmd.Index < 0 || cmd.Index >= len(cart.Items) {
		s.logger(ctx, "cart.remove_index_out_of_range", map[string]any{
			"cartID": cartID,
			"index":  cmd.Index,
			"length": len(cart.Items),
		})
		return s.buildView(cart), nil
	}

	cart.Items = append(cart.Items[:cmd.Index], cart.Items[cmd.Index+1:]...)

	if err := s.repo.PutCart(ctx, cart); err != nil {
		return CartView{}, s.translateRepoError(err)
	}
	return s.buildView(cart), nil
}

// ClearCart removes the persisted cart record entirely.
func (s *cartService) ClearCart(ctx context.Context, cartID string) error {
	if s == nil || s.repo == nil {
		return ErrCartUnavailable
	}

	id := strings.TrimSpace(cartID)
	if id == "" {
		return ErrCartInvalidInput
	}
	if err := s.repo.DeleteCart(ctx, id); err != nil {
		return s.translateRepoError(err)
	}
	return nil
}

func (s *cartService) buildView(cart Cart) CartView {
	return CartView{
		Cart:      cart,
		Summary:   s.summary.Calculate(cart.Items),
		ItemCount: cart.ItemCount(),
	}
}

// normaliseCart restores invariants on whatever was read back from storage:
// a non-nil item slice, the expected cart ID, and quantities of at least 1.
func normaliseCart(cart Cart, cartID string) Cart {
	if strings.TrimSpace(cart.ID) == "" {
		cart.ID = cartID
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	for i := range cart.Items {
		if cart.Items[i].Quantity < 1 {
			cart.Items[i].Quantity = 1
		}
	}
	return cart
}

func indexOfItem(items []domain.CartItem, itemID string) int {
	for i, item := range items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

func (s *cartService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		return ErrCartUnavailable
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return ErrCartUnavailable
}
