package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/trendora/storefront/internal/platform/httpx"
	"github.com/trendora/storefront/internal/platform/requestctx"
	"github.com/trendora/storefront/internal/services"
)

// CartHandlers exposes the JSON cart endpoints for the current visitor.
type CartHandlers struct {
	carts   services.CartService
	limiter rateLimiter
}

const (
	maxCartBodySize = 16 * 1024

	// cartIDHeader lets API clients without the session cookie address a cart directly.
	cartIDHeader = "X-Cart-ID"
)

// NewCartHandlers constructs handlers around the cart service.
func NewCartHandlers(carts services.CartService, opts ...CartOption) *CartHandlers {
	h := &CartHandlers{carts: carts}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CartOption customises cart handler behaviour.
type CartOption func(*CartHandlers)

// WithCartMutationLimit throttles cart mutations per cart identifier to at
// most limit requests per window.
func WithCartMutationLimit(limit int, window time.Duration) CartOption {
	return func(h *CartHandlers) {
		h.limiter = newSimpleRateLimiter(limit, window, nil)
	}
}

// Routes wires the /cart endpoints onto the provided router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getCart)
	r.Delete("/", h.clearCart)
	r.Post("/items", h.addItem)
	r.Post("/items/{index}/quantity", h.changeQuantity)
	r.Delete("/items/{index}", h.removeItem)
}

type addItemRequest struct {
	Name      string `json:"name"`
	PriceText string `json:"priceText"`
	Image     string `json:"img"`
}

type changeQuantityRequest struct {
	Delta int `json:"delta"`
}

type cartPayload struct {
	ID        string              `json:"id"`
	Items     []services.CartItem `json:"items"`
	ItemCount int                 `json:"itemCount"`
	Summary   summaryPayload      `json:"summary"`
}

type summaryPayload struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

type cartResponse struct {
	Cart cartPayload `json:"cart"`
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cartID, ok := h.resolveCartID(ctx, w, r)
	if !ok {
		return
	}

	view, err := h.carts.GetCart(ctx, cartID)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, cartResponse{Cart: buildCartPayload(view)})
}

func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cartID, ok := h.resolveCartID(ctx, w, r)
	if !ok {
		return
	}
	if !h.allowMutation(ctx, w, cartID) {
		return
	}

	body, err := readLimitedBody(r, maxCartBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req addItemRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	view, err := h.carts.AddItem(ctx, services.AddItemCommand{
		CartID:    cartID,
		Name:      req.Name,
		PriceText: req.PriceText,
		ImageURL:  req.Image,
	})
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, cartResponse{Cart: buildCartPayload(view)})
}

func (h *CartHandlers) changeQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cartID, ok := h.resolveCartID(ctx, w, r)
	if !ok {
		return
	}
	if !h.allowMutation(ctx, w, cartID) {
		return
	}

	index, err := indexParam(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	body, err := readLimitedBody(r, maxCartBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req changeQuantityRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}
	if req.Delta == 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "delta must be non-zero", http.StatusBadRequest))
		return
	}

	view, err := h.carts.ChangeQuantity(ctx, services.ChangeQuantityCommand{
		CartID: cartID,
		Index:  index,
		Delta:  req.Delta,
	})
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, cartResponse{Cart: buildCartPayload(view)})
}

func (h *CartHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cartID, ok := h.resolveCartID(ctx, w, r)
	if !ok {
		return
	}
	if !h.allowMutation(ctx, w, cartID) {
		return
	}

	index, err := indexParam(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	view, err := h.carts.RemoveItem(ctx, services.RemoveItemCommand{CartID: cartID, Index: index})
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, cartResponse{Cart: buildCartPayload(view)})
}

func (h *CartHandlers) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cartID, ok := h.resolveCartID(ctx, w, r)
	if !ok {
		return
	}
	if !h.allowMutation(ctx, w, cartID) {
		return
	}

	if err := h.carts.ClearCart(ctx, cartID); err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandlers) resolveCartID(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return "", false
	}
	if cartID, ok := requestctx.CartID(ctx); ok {
		return cartID, true
	}
	if cartID := strings.TrimSpace(r.Header.Get(cartIDHeader)); cartID != "" {
		return cartID, true
	}
	httpx.WriteError(ctx, w, httpx.NewError("cart_session_required", "no cart session; retry with cookies enabled or set "+cartIDHeader, http.StatusBadRequest))
	return "", false
}

func (h *CartHandlers) allowMutation(ctx context.Context, w http.ResponseWriter, cartID string) bool {
	if h.limiter == nil || h.limiter.Allow(cartID) {
		return true
	}
	httpx.WriteError(ctx, w, httpx.NewError("rate_limited", "too many cart updates; slow down", http.StatusTooManyRequests))
	return false
}

func (h *CartHandlers) writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCartUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("cart_error", "cart operation failed", http.StatusInternalServerError))
	}
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	}
}

func indexParam(r *http.Request) (int, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "index"))
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("index must be a non-negative integer")
	}
	return index, nil
}

func buildCartPayload(view services.CartView) cartPayload {
	items := view.Cart.Items
	if items == nil {
		items = []services.CartItem{}
	}
	return cartPayload{
		ID:        view.Cart.ID,
		Items:     items,
		ItemCount: view.ItemCount,
		Summary: summaryPayload{
			Subtotal: view.Summary.Subtotal,
			Shipping: view.Summary.Shipping,
			Total:    view.Summary.Total,
		},
	}
}
