package services

import (
	"context"
	"errors"

	domain "github.com/trendora/storefront/internal/domain"
	"github.com/trendora/storefront/internal/repositories"
)

var errCatalogRepositoryRequired = errors.New("catalog service: repository is required")

// ErrCatalogUnavailable indicates the catalog backend cannot be read.
var ErrCatalogUnavailable = errors.New("catalog service: unavailable")

// CatalogServiceDeps bundles constructor inputs for the catalog service.
type CatalogServiceDeps struct {
	Catalog repositories.CatalogRepository
	Logger  func(context.Context, string, map[string]any)
}

type catalogService struct {
	repo   repositories.CatalogRepository
	logger func(context.Context, string, map[string]any)
}

// NewCatalogService constructs the catalog service with the supplied dependencies.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Catalog == nil {
		return nil, errCatalogRepositoryRequired
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &catalogService{repo: deps.Catalog, logger: logger}, nil
}

// ListProducts returns the catalog narrowed by the filter. Only the men and
// women selections actually exclude cards; "all", "unisex", and unknown
// selections show the full grid, matching the storefront's original filter
// behaviour.
func (s *catalogService) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	if s == nil || s.repo == nil {
		return nil, ErrCatalogUnavailable
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		s.logger(ctx, "catalog.list_failed", map[string]any{"error": err.Error()})
		return nil, ErrCatalogUnavailable
	}

	switch filter.Category {
	case domain.CategoryMen, domain.CategoryWomen:
	default:
		return products, nil
	}

	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Category == filter.Category {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}
