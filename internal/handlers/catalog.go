package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/trendora/storefront/internal/domain"
	"github.com/trendora/storefront/internal/platform/httpx"
	"github.com/trendora/storefront/internal/services"
)

// CatalogHandlers exposes the read-only product endpoints backing the shop grid.
type CatalogHandlers struct {
	catalog services.CatalogService
}

// NewCatalogHandlers constructs handlers around the catalog service.
func NewCatalogHandlers(catalog services.CatalogService) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog}
}

// Routes wires the /products endpoints onto the provided router.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.listProducts)
}

type productPayload struct {
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	PriceText   string  `json:"priceText"`
	Image       string  `json:"img"`
	Category    string  `json:"category"`
	Description string  `json:"descriptionHtml,omitempty"`
}

type productsResponse struct {
	Products []productPayload `json:"products"`
	Category string           `json:"category"`
}

func (h *CatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog is unavailable", http.StatusServiceUnavailable))
		return
	}

	category := domain.Category(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("category"))))
	products, err := h.catalog.ListProducts(ctx, services.ProductFilter{Category: category})
	if err != nil {
		h.writeCatalogError(ctx, w, err)
		return
	}

	payload := productsResponse{
		Products: make([]productPayload, 0, len(products)),
		Category: effectiveCategory(category),
	}
	for _, p := range products {
		payload.Products = append(payload.Products, productPayload{
			Slug:        p.Slug,
			Name:        p.Name,
			Price:       p.Price,
			PriceText:   p.PriceText,
			Image:       p.Image,
			Category:    string(p.Category),
			Description: p.DescriptionHTML,
		})
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *CatalogHandlers) writeCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCatalogUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "failed to list products", http.StatusInternalServerError))
	}
}

// effectiveCategory echoes back the selection the grid was narrowed by; anything
// other than men or women renders the full grid and reports "all".
func effectiveCategory(category domain.Category) string {
	switch category {
	case domain.CategoryMen, domain.CategoryWomen:
		return string(category)
	}
	return string(domain.CategoryAll)
}
