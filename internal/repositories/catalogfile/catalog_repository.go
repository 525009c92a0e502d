package catalogfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"

	domain "github.com/trendora/storefront/internal/domain"
)

// CatalogRepository serves products from a YAML file. The file plays the role
// of the static product-listing markup: name, formatted price text, and image
// per card, plus an optional markdown description rendered to sanitized HTML.
// Slug, numeric price, and category are derived from the raw fields exactly
// as an add-to-cart action would derive them.
type CatalogRepository struct {
	path     string
	refresh  time.Duration
	clock    func() time.Time
	markdown goldmark.Markdown
	policy   *bluemonday.Policy

	mu       sync.RWMutex
	products []domain.Product
	loaded   bool
	loadedAt time.Time
}

// RepositoryOption customises the catalog repository.
type RepositoryOption func(*CatalogRepository)

// WithRefreshInterval makes the cached file contents expire after d, so
// catalog edits show up without a restart. Zero keeps the cache forever.
func WithRefreshInterval(d time.Duration) RepositoryOption {
	return func(r *CatalogRepository) {
		r.refresh = d
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(clock func() time.Time) RepositoryOption {
	return func(r *CatalogRepository) {
		if clock != nil {
			r.clock = clock
		}
	}
}

type catalogFile struct {
	Products []catalogEntry `yaml:"products"`
}

type catalogEntry struct {
	Name        string `yaml:"name"`
	Price       string `yaml:"price"`
	Image       string `yaml:"image"`
	Description string `yaml:"description"`
}

// NewCatalogRepository constructs a file-backed catalog repository.
func NewCatalogRepository(path string, opts ...RepositoryOption) (*CatalogRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog repository: file path is required")
	}
	r := &CatalogRepository{
		path:     path,
		clock:    time.Now,
		markdown: goldmark.New(),
		policy:   bluemonday.UGCPolicy(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// ListProducts returns the catalog in file order. The file is read once and
// cached until the refresh interval elapses; an absent file reads as an empty
// catalog so pages without a product grid simply render nothing.
func (r *CatalogRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if r == nil {
		return nil, errors.New("catalog repository not initialised")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	if r.cacheValidLocked() {
		products := clone(r.products)
		r.mu.RUnlock()
		return products, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cacheValidLocked() {
		return clone(r.products), nil
	}

	products, err := r.load()
	if err != nil {
		return nil, err
	}
	r.products = products
	r.loaded = true
	r.loadedAt = r.clock()
	return clone(products), nil
}

func (r *CatalogRepository) cacheValidLocked() bool {
	if !r.loaded {
		return false
	}
	if r.refresh <= 0 {
		return true
	}
	return r.clock().Sub(r.loadedAt) < r.refresh
}

func (r *CatalogRepository) load() ([]domain.Product, error) {
	raw, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.Product{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog repository: read %s: %w", r.path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("catalog repository: parse %s: %w", r.path, err)
	}

	products := make([]domain.Product, 0, len(file.Products))
	for _, entry := range file.Products {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			continue
		}
		product := domain.Product{
			Slug:      domain.Slugify(name),
			Name:      name,
			Price:     domain.ParsePrice(entry.Price),
			PriceText: strings.TrimSpace(entry.Price),
			Image:     strings.TrimSpace(entry.Image),
			Category:  domain.CategoryFromTitle(name),
		}
		if desc := strings.TrimSpace(entry.Description); desc != "" {
			html, err := r.renderDescription(desc)
			if err != nil {
				return nil, fmt.Errorf("catalog repository: render description for %q: %w", name, err)
			}
			product.DescriptionHTML = html
		}
		products = append(products, product)
	}
	return products, nil
}

func (r *CatalogRepository) renderDescription(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(r.policy.Sanitize(buf.String())), nil
}

func clone(products []domain.Product) []domain.Product {
	out := make([]domain.Product, len(products))
	copy(out, products)
	return out
}
