package domain

// Category labels a product for storefront filtering.
type Category string

const (
	// CategoryMen marks products matched by the men keyword list.
	CategoryMen Category = "men"
	// CategoryWomen marks products matched by the women keyword list.
	CategoryWomen Category = "women"
	// CategoryUnisex marks products matched by the unisex keyword list.
	CategoryUnisex Category = "unisex"
	// CategoryAll is the fallback when no keyword list matches.
	CategoryAll Category = "all"
)

// Valid reports whether the category is one of the known labels.
func (c Category) Valid() bool {
	switch c {
	case CategoryMen, CategoryWomen, CategoryUnisex, CategoryAll:
		return true
	}
	return false
}

// CartItem is one distinct product line within a cart. Name, price, image and
// category are snapshotted at add time and never re-derived, so later catalog
// changes do not rewrite lines already in the cart. The JSON tags define the
// persisted wire shape and must stay stable.
type CartItem struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	PriceText string   `json:"priceText"`
	Image     string   `json:"img"`
	Quantity  int      `json:"qty"`
	Category  Category `json:"category"`
}

// Cart aggregates the ordered item list for one visitor session. Insertion
// order is preserved; the item slice is the entire persisted state.
type Cart struct {
	ID    string
	Items []CartItem
}

// ItemCount returns the total quantity across all lines, used for the nav badge.
func (c Cart) ItemCount() int {
	total := 0
	for _, item := range c.Items {
		if item.Quantity > 0 {
			total += item.Quantity
		}
	}
	return total
}

// OrderSummary holds the derived monetary figures shown on the cart page.
type OrderSummary struct {
	Subtotal float64
	Shipping float64
	Total    float64
}

// Product is a catalog entry rendered as a card on the shop page.
type Product struct {
	Slug            string
	Name            string
	Price           float64
	PriceText       string
	Image           string
	Category        Category
	DescriptionHTML string
}
