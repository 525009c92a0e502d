package badger

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	badgerdb "github.com/dgraph-io/badger/v3"

	domain "github.com/trendora/storefront/internal/domain"
)

// cartKeyPrefix is the well-known storage namespace for cart records. Each
// visitor session stores one JSON array of items under cartItems/<cartID>.
const cartKeyPrefix = "cartItems/"

// CartRepository persists cart item lists in Badger.
type CartRepository struct {
	provider *Provider
}

// NewCartRepository constructs a Badger-backed cart repository.
func NewCartRepository(provider *Provider) (*CartRepository, error) {
	if provider == nil || provider.DB() == nil {
		return nil, errors.New("cart repository requires badger provider")
	}
	return &CartRepository{provider: provider}, nil
}

// GetCart loads the item list for the given cart. A missing key or a value
// that does not decode as a JSON item array degrades to an empty cart; the
// storefront treats corrupt state as a silent reset, never an error.
func (r *CartRepository) GetCart(ctx context.Context, cartID string) (domain.Cart, error) {
	if r == nil || r.provider == nil {
		return domain.Cart{}, errors.New("cart repository not initialised")
	}
	if err := ctx.Err(); err != nil {
		return domain.Cart{}, err
	}

	id := strings.TrimSpace(cartID)
	if id == "" {
		return domain.Cart{}, errors.New("cart repository: cart id is required")
	}

	empty := domain.Cart{ID: id, Items: []domain.CartItem{}}

	var raw []byte
	err := r.provider.DB().View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(cartKey(id))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return empty, nil
		}
		return domain.Cart{}, wrapError("cart get", err)
	}

	var items []domain.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return empty, nil
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	return domain.Cart{ID: id, Items: items}, nil
}

// PutCart serialises the cart's item list and persists it under the cart key.
func (r *CartRepository) PutCart(ctx context.Context, cart domain.Cart) error {
	if r == nil || r.provider == nil {
		return errors.New("cart repository not initialised")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	id := strings.TrimSpace(cart.ID)
	if id == "" {
		return errors.New("cart repository: cart id is required")
	}

	items := cart.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return wrapError("cart encode", err)
	}

	err = r.provider.DB().Update(func(txn *badgerdb.Txn) error {
		return txn.Set(cartKey(id), raw)
	})
	return wrapError("cart put", err)
}

// DeleteCart removes the persisted record for the given cart. Deleting an
// absent cart is a no-op.
func (r *CartRepository) DeleteCart(ctx context.Context, cartID string) error {
	if r == nil || r.provider == nil {
		return errors.New("cart repository not initialised")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	id := strings.TrimSpace(cartID)
	if id == "" {
		return errors.New("cart repository: cart id is required")
	}

	err := r.provider.DB().Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(cartKey(id))
	})
	return wrapError("cart delete", err)
}

func cartKey(cartID string) []byte {
	return []byte(cartKeyPrefix + cartID)
}
