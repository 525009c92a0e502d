package domain

import "strings"

// Keyword lists for title classification. The lists overlap on purpose
// ("jacket" is both men and unisex); the check order men -> women -> unisex is
// the tie-break and must be preserved for reproducible classification.
var (
	menKeywords = []string{
		"men", "man", "men's", "men s", "male", "shirt", "tee", "t-shirt",
		"trouser", "jeans", "jacket", "hoodie", "hoodies", "sweatshirt",
	}
	womenKeywords = []string{
		"women", "woman", "women's", "women s", "female", "dress", "saree",
		"kurti", "top", "skirt", "maxi", "floral", "co-ord", "coord", "maxi dress",
	}
	unisexKeywords = []string{
		"unisex", "sneaker", "sneakers", "hoodie", "coat", "jacket", "tee",
		"tshirt", "t-shirt",
	}
)

// CategoryFromTitle maps a free-text product title to exactly one category
// label. Matching is plain substring containment on the lowercased title;
// the first keyword hit in list priority order wins, and titles matching no
// list fall back to CategoryAll.
func CategoryFromTitle(title string) Category {
	t := strings.ToLower(title)

	for _, k := range menKeywords {
		if strings.Contains(t, k) {
			return CategoryMen
		}
	}
	for _, k := range womenKeywords {
		if strings.Contains(t, k) {
			return CategoryWomen
		}
	}
	for _, k := range unisexKeywords {
		if strings.Contains(t, k) {
			return CategoryUnisex
		}
	}
	return CategoryAll
}
