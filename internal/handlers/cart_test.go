package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/trendora/storefront/internal/domain"
	"github.com/trendora/storefront/internal/platform/requestctx"
	"github.com/trendora/storefront/internal/services"
)

type stubCartService struct {
	getFunc    func(ctx context.Context, cartID string) (services.CartView, error)
	addFunc    func(ctx context.Context, cmd services.AddItemCommand) (services.CartView, error)
	changeFunc func(ctx context.Context, cmd services.ChangeQuantityCommand) (services.CartView, error)
	removeFunc func(ctx context.Context, cmd services.RemoveItemCommand) (services.CartView, error)
	clearFunc  func(ctx context.Context, cartID string) error
}

func (s *stubCartService) GetCart(ctx context.Context, cartID string) (services.CartView, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, cartID)
	}
	return services.CartView{Cart: domain.Cart{ID: cartID, Items: []domain.CartItem{}}}, nil
}

func (s *stubCartService) AddItem(ctx context.Context, cmd services.AddItemCommand) (services.CartView, error) {
	if s.addFunc != nil {
		return s.addFunc(ctx, cmd)
	}
	return services.CartView{Cart: domain.Cart{ID: cmd.CartID, Items: []domain.CartItem{}}}, nil
}

func (s *stubCartService) ChangeQuantity(ctx context.Context, cmd services.ChangeQuantityCommand) (services.CartView, error) {
	if s.changeFunc != nil {
		return s.changeFunc(ctx, cmd)
	}
	return services.CartView{Cart: domain.Cart{ID: cmd.CartID, Items: []domain.CartItem{}}}, nil
}

func (s *stubCartService) RemoveItem(ctx context.Context, cmd services.RemoveItemCommand) (services.CartView, error) {
	if s.removeFunc != nil {
		return s.removeFunc(ctx, cmd)
	}
	return services.CartView{Cart: domain.Cart{ID: cmd.CartID, Items: []domain.CartItem{}}}, nil
}

func (s *stubCartService) ClearCart(ctx context.Context, cartID string) error {
	if s.clearFunc != nil {
		return s.clearFunc(ctx, cartID)
	}
	return nil
}

func newCartTestRouter(svc services.CartService, opts ...CartOption) chi.Router {
	r := chi.NewRouter()
	NewCartHandlers(svc, opts...).Routes(r)
	return r
}

func withCartContext(r *http.Request, cartID string) *http.Request {
	return r.WithContext(requestctx.WithCartID(r.Context(), cartID))
}

func decodeCartResponse(t *testing.T, body []byte) cartResponse {
	t.Helper()
	var resp cartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestCartHandlersGetCart(t *testing.T) {
	svc := &stubCartService{
		getFunc: func(ctx context.Context, cartID string) (services.CartView, error) {
			return services.CartView{
				Cart: domain.Cart{ID: cartID, Items: []domain.CartItem{
					{ID: "ceramic-mug", Name: "Ceramic Mug", Price: 349, Quantity: 2, Category: domain.CategoryAll},
				}},
				Summary:   domain.OrderSummary{Subtotal: 698, Shipping: 49, Total: 747},
				ItemCount: 2,
			}, nil
		},
	}
	router := newCartTestRouter(svc)

	req := withCartContext(httptest.NewRequest(http.MethodGet, "/", nil), "visitor-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeCartResponse(t, rr.Body.Bytes())
	if resp.Cart.ID != "visitor-1" {
		t.Errorf("unexpected cart id %q", resp.Cart.ID)
	}
	if resp.Cart.ItemCount != 2 {
		t.Errorf("expected item count 2, got %d", resp.Cart.ItemCount)
	}
	if resp.Cart.Summary.Total != 747 {
		t.Errorf("expected total 747, got %v", resp.Cart.Summary.Total)
	}
}

func TestCartHandlersGetCartHeaderFallback(t *testing.T) {
	var seen string
	svc := &stubCartService{
		getFunc: func(ctx context.Context, cartID string) (services.CartView, error) {
			seen = cartID
			return services.CartView{Cart: domain.Cart{ID: cartID, Items: []domain.CartItem{}}}, nil
		},
	}
	router := newCartTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(cartIDHeader, "api-client-9")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if seen != "api-client-9" {
		t.Errorf("expected header cart id, got %q", seen)
	}
}

func TestCartHandlersGetCartWithoutSession(t *testing.T) {
	router := newCartTestRouter(&stubCartService{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestCartHandlersAddItem(t *testing.T) {
	var got services.AddItemCommand
	svc := &stubCartService{
		addFunc: func(ctx context.Context, cmd services.AddItemCommand) (services.CartView, error) {
			got = cmd
			return services.CartView{
				Cart: domain.Cart{ID: cmd.CartID, Items: []domain.CartItem{
					{ID: "mens-denim-jacket", Name: "Men's Denim Jacket", Price: 1299, Quantity: 1, Category: domain.CategoryMen},
				}},
				Summary:   domain.OrderSummary{Subtotal: 1299, Shipping: 49, Total: 1348},
				ItemCount: 1,
			}, nil
		},
	}
	router := newCartTestRouter(svc)

	body := `{"name":"Men's Denim Jacket","priceText":"₹1,299","img":"/img/denim.jpg"}`
	req := withCartContext(httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(body)), "visitor-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.CartID != "visitor-1" || got.Name != "Men's Denim Jacket" || got.PriceText != "₹1,299" || got.ImageURL != "/img/denim.jpg" {
		t.Errorf("unexpected command: %+v", got)
	}
	resp := decodeCartResponse(t, rr.Body.Bytes())
	if len(resp.Cart.Items) != 1 {
		t.Errorf("expected 1 item, got %d", len(resp.Cart.Items))
	}
}

func TestCartHandlersAddItemInvalidJSON(t *testing.T) {
	router := newCartTestRouter(&stubCartService{})

	req := withCartContext(httptest.NewRequest(http.MethodPost, "/items", strings.NewReader("{not json")), "visitor-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestCartHandlersAddItemEmptyBody(t *testing.T) {
	router := newCartTestRouter(&stubCartService{})

	req := withCartContext(httptest.NewRequest(http.MethodPost, "/items", strings.NewReader("  ")), "visitor-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestCartHandlersAddItemInvalidInput(t *testing.T) {
	svc := &stubCartService{
		addFunc: func(ctx context.Context, cmd services.AddItemCommand) (services.CartView, error) {
			return services.CartView{}, services.ErrCartInvalidInput
		},
	}
	router := newCartTestRouter(svc)

	req := withCartContext(httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"name":""}`)), "visitor-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestCartHandlersChangeQuantity(t *testing.T) {
	var got services.ChangeQuantityCommand
	svc := &stubCartService{
		changeFunc: func(ctx context.Context, cmd services.ChangeQuantityCommand) (services.CartView, error) {
			got = cmd
			return services.CartView{Cart: domain.Cart{ID: cmd.CartID, Items: []domain.CartItem{}}}, nil
		},
	}
	router := newCartTestRouter(svc)

	req := withCartContext(httptest.NewRequest(http.MethodPost, "/items/2/quantity", strings.NewReader(`{"delta":-1}`)), "visitor-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.Index != 2 || got.Delta != -1 {
		t.Errorf("unexpected command: %+v", got)
	}
}

func TestCartHandlersChangeQuantityRejectsZeroDelta(t *testing.T) {
	router := newCartTestRouter(&stubCartService{})

	req := withCartContext(httptest.NewRequest(http.MethodPost, "/items/0/quantity", strings.NewReader(`{"delta":0}`)), "visitor-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestCartHandlersChangeQuantityRejectsBadIndex(t *testing.T) {
	router := newCartTestRouter(&stubCartService{})

	req := withCartContext(httptest.NewRequest(http.MethodPost, "/items/abc/quantity", strings.NewReader(`{"delta":1}`)), "visitor-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestCartHandlersRemoveItem(t *testing.T) {
	var got services.RemoveItemCommand
	svc := &stubCartService{
		removeFunc: func(ctx context.Context, cmd services.RemoveItemCommand) (services.CartView, error) {
			got = cmd
			return services.CartView{Cart: domain.Cart{ID: cmd.CartID, Items: []domain.CartItem{}}}, nil
		},
	}
	router := newCartTestRouter(svc)

	req := withCartContext(httptest.NewRequest(http.MethodDelete, "/items/0", nil), "visitor-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if got.Index != 0 || got.CartID != "visitor-1" {
		t.Errorf("unexpected command: %+v", got)
	}
}

func TestCartHandlersClearCart(t *testing.T) {
	cleared := false
	svc := &stubCartService{
		clearFunc: func(ctx context.Context, cartID string) error {
			cleared = true
			return nil
		},
	}
	router := newCartTestRouter(svc)

	req := withCartContext(httptest.NewRequest(http.MethodDelete, "/", nil), "visitor-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if !cleared {
		t.Error("expected clear to be invoked")
	}
}

func TestCartHandlersServiceUnavailable(t *testing.T) {
	svc := &stubCartService{
		getFunc: func(ctx context.Context, cartID string) (services.CartView, error) {
			return services.CartView{}, services.ErrCartUnavailable
		},
	}
	router := newCartTestRouter(svc)

	req := withCartContext(httptest.NewRequest(http.MethodGet, "/", nil), "visitor-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rr.Code)
	}
}

func TestCartHandlersMutationRateLimit(t *testing.T) {
	router := newCartTestRouter(&stubCartService{}, WithCartMutationLimit(1, time.Minute))

	first := withCartContext(httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"name":"Mug"}`)), "visitor-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, first)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected first mutation to pass, got %d", rr.Code)
	}

	second := withCartContext(httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"name":"Mug"}`)), "visitor-1")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, second)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rr.Code)
	}
}
