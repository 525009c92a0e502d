package web

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	domain "github.com/trendora/storefront/internal/domain"
	"github.com/trendora/storefront/internal/platform/observability"
	"github.com/trendora/storefront/internal/platform/requestctx"
	"github.com/trendora/storefront/internal/services"
)

// Handlers renders the HTML storefront: the shop grid, the cart page, and the
// form-post cart mutations that redirect back.
type Handlers struct {
	carts     services.CartService
	catalog   services.CatalogService
	renderer  *Renderer
	staticDir string
}

// HandlersDeps bundles constructor inputs for the web handlers.
type HandlersDeps struct {
	Carts     services.CartService
	Catalog   services.CatalogService
	Renderer  *Renderer
	StaticDir string
}

var (
	errCartsRequired    = errors.New("web handlers: cart service is required")
	errCatalogRequired  = errors.New("web handlers: catalog service is required")
	errRendererRequired = errors.New("web handlers: renderer is required")
)

// NewHandlers constructs the web handlers with the supplied dependencies.
func NewHandlers(deps HandlersDeps) (*Handlers, error) {
	if deps.Carts == nil {
		return nil, errCartsRequired
	}
	if deps.Catalog == nil {
		return nil, errCatalogRequired
	}
	if deps.Renderer == nil {
		return nil, errRendererRequired
	}
	return &Handlers{
		carts:     deps.Carts,
		catalog:   deps.Catalog,
		renderer:  deps.Renderer,
		staticDir: deps.StaticDir,
	}, nil
}

// Routes wires the storefront pages onto the provided router.
func (h *Handlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/shop", http.StatusFound)
	})
	r.Get("/shop", h.shopPage)
	r.Get("/cart", h.cartPage)
	r.Post("/cart/items", h.addItem)
	r.Post("/cart/items/{index}/quantity", h.changeQuantity)
	r.Post("/cart/items/{index}/remove", h.removeItem)
	if h.staticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(h.staticDir))))
	}
}

type productCard struct {
	Slug        string
	Name        string
	PriceText   string
	Image       string
	Category    string
	Description template.HTML
}

type shopPageData struct {
	Title     string
	Path      string
	CartCount int
	Category  string
	Toast     string
	Products  []productCard
}

type cartLine struct {
	Index     int
	Name      string
	PriceText string
	Image     string
	Quantity  int
	LineTotal string
}

type summaryView struct {
	Subtotal string
	Shipping string
	Total    string
}

type cartPageData struct {
	Title     string
	Path      string
	CartCount int
	Items     []cartLine
	Summary   summaryView
}

func (h *Handlers) shopPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	category := domain.Category(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("category"))))
	products, err := h.catalog.ListProducts(ctx, services.ProductFilter{Category: category})
	if err != nil {
		requestctx.Logger(ctx).Error("shop page: catalog failed", zap.Error(err))
		http.Error(w, "shop is temporarily unavailable", http.StatusServiceUnavailable)
		return
	}

	data := shopPageData{
		Title:    "Trendora | Shop",
		Path:     r.URL.Path,
		Category: selectedCategory(category),
		Toast:    strings.TrimSpace(r.URL.Query().Get("added")),
		Products: make([]productCard, 0, len(products)),
	}
	data.CartCount = h.badgeCount(r)
	for _, p := range products {
		data.Products = append(data.Products, productCard{
			Slug:        p.Slug,
			Name:        p.Name,
			PriceText:   p.PriceText,
			Image:       p.Image,
			Category:    string(p.Category),
			Description: template.HTML(p.DescriptionHTML),
		})
	}

	h.renderer.Render(w, "shop", data)
}

func (h *Handlers) cartPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cartID, ok := requestctx.CartID(ctx)
	if !ok {
		http.Error(w, "cart session required", http.StatusBadRequest)
		return
	}

	view, err := h.carts.GetCart(ctx, cartID)
	if err != nil {
		requestctx.Logger(ctx).Error("cart page: cart service failed",
			zap.String("cart_id", observability.SanitizeCartID(cartID)),
			zap.Error(err))
		http.Error(w, "cart is temporarily unavailable", http.StatusServiceUnavailable)
		return
	}

	data := cartPageData{
		Title:     "Trendora | Your Cart",
		Path:      r.URL.Path,
		CartCount: view.ItemCount,
		Items:     make([]cartLine, 0, len(view.Cart.Items)),
		Summary: summaryView{
			Subtotal: FormatPrice(view.Summary.Subtotal),
			Shipping: FormatPrice(view.Summary.Shipping),
			Total:    FormatPrice(view.Summary.Total),
		},
	}
	for i, item := range view.Cart.Items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		data.Items = append(data.Items, cartLine{
			Index:     i,
			Name:      item.Name,
			PriceText: item.PriceText,
			Image:     item.Image,
			Quantity:  qty,
			LineTotal: FormatPrice(item.Price * float64(qty)),
		})
	}

	h.renderer.Render(w, "cart", data)
}

func (h *Handlers) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cartID, ok := requestctx.CartID(ctx)
	if !ok {
		http.Error(w, "cart session required", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	name := r.PostFormValue("name")
	_, err := h.carts.AddItem(ctx, services.AddItemCommand{
		CartID:    cartID,
		Name:      name,
		PriceText: r.PostFormValue("priceText"),
		ImageURL:  r.PostFormValue("img"),
	})
	if err != nil {
		if errors.Is(err, services.ErrCartInvalidInput) {
			http.Error(w, "invalid product", http.StatusBadRequest)
			return
		}
		requestctx.Logger(ctx).Error("add to cart failed",
			zap.String("cart_id", observability.SanitizeCartID(cartID)),
			zap.Error(err))
		http.Error(w, "cart is temporarily unavailable", http.StatusServiceUnavailable)
		return
	}

	http.Redirect(w, r, withToast(redirectTarget(r, "/shop"), name), http.StatusSeeOther)
}

func (h *Handlers) changeQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cartID, ok := requestctx.CartID(ctx)
	if !ok {
		http.Error(w, "cart session required", http.StatusBadRequest)
		return
	}
	index, err := indexParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	delta, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("delta")))
	if err != nil || delta == 0 {
		http.Error(w, "delta must be a non-zero integer", http.StatusBadRequest)
		return
	}

	if _, err := h.carts.ChangeQuantity(ctx, services.ChangeQuantityCommand{
		CartID: cartID,
		Index:  index,
		Delta:  delta,
	}); err != nil {
		requestctx.Logger(ctx).Error("change quantity failed",
			zap.String("cart_id", observability.SanitizeCartID(cartID)),
			zap.Error(err))
		http.Error(w, "cart is temporarily unavailable", http.StatusServiceUnavailable)
		return
	}

	http.Redirect(w, r, redirectTarget(r, "/cart"), http.StatusSeeOther)
}

func (h *Handlers) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cartID, ok := requestctx.CartID(ctx)
	if !ok {
		http.Error(w, "cart session required", http.StatusBadRequest)
		return
	}
	index, err := indexParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.carts.RemoveItem(ctx, services.RemoveItemCommand{CartID: cartID, Index: index}); err != nil {
		requestctx.Logger(ctx).Error("remove item failed",
			zap.String("cart_id", observability.SanitizeCartID(cartID)),
			zap.Error(err))
		http.Error(w, "cart is temporarily unavailable", http.StatusServiceUnavailable)
		return
	}

	http.Redirect(w, r, redirectTarget(r, "/cart"), http.StatusSeeOther)
}

// badgeCount fetches the nav badge total; the shop page still renders when the
// cart store is down.
func (h *Handlers) badgeCount(r *http.Request) int {
	ctx := r.Context()
	cartID, ok := requestctx.CartID(ctx)
	if !ok {
		return 0
	}
	view, err := h.carts.GetCart(ctx, cartID)
	if err != nil {
		requestctx.Logger(ctx).Warn("badge count unavailable",
			zap.String("cart_id", observability.SanitizeCartID(cartID)),
			zap.Error(err))
		return 0
	}
	return view.ItemCount
}

func indexParam(r *http.Request) (int, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "index"))
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, errors.New("index must be a non-negative integer")
	}
	return index, nil
}

// withToast appends the just-added product name so the next shop render can
// show the confirmation toast.
func withToast(target, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return target
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + "added=" + url.QueryEscape(name)
}

// redirectTarget only honours same-site relative paths from the form.
func redirectTarget(r *http.Request, fallback string) string {
	target := strings.TrimSpace(r.PostFormValue("redirect"))
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") {
		return target
	}
	return fallback
}

func selectedCategory(category domain.Category) string {
	switch category {
	case domain.CategoryMen, domain.CategoryWomen:
		return string(category)
	}
	return string(domain.CategoryAll)
}
