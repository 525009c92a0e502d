package domain

import (
	"regexp"
	"strings"
)

var (
	slugQuotes     = strings.NewReplacer("'", "", `"`, "", "‘", "", "’", "", "“", "", "”", "")
	slugWhitespace = regexp.MustCompile(`\s+`)
	slugInvalid    = regexp.MustCompile(`[^\w-]+`)
)

// Slugify derives the stable, URL-safe identifier used as the cart merge key:
// lowercase, trimmed, quotes stripped, whitespace runs collapsed to single
// hyphens, and any remaining non-word rune dropped. The function is
// deterministic and idempotent; slugifying an existing slug returns it
// unchanged.
func Slugify(name string) string {
	s := strings.TrimSpace(strings.ToLower(name))
	s = slugQuotes.Replace(s)
	s = slugWhitespace.ReplaceAllString(s, "-")
	return slugInvalid.ReplaceAllString(s, "")
}
