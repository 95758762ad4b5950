package core

import (
	"strings"
	"unicode"
)

// Category is a normalized category label. Key is the canonical matching
// key used everywhere categories are compared; Display is the
// presentation form. Two categories are the same entity iff their Keys
// are equal.
type Category struct {
	Key     string
	Display string
}

// NormalizeCategory canonicalizes a free-text category label. The key is
// the trimmed, case-folded text; the display form upper-cases the first
// rune and lower-cases the rest. Empty or whitespace-only input fails
// with ErrEmptyCategory.
func NormalizeCategory(raw string) (Category, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Category{}, ErrEmptyCategory
	}
	key := strings.ToLower(trimmed)
	runes := []rune(key)
	runes[0] = unicode.ToUpper(runes[0])
	return Category{Key: key, Display: string(runes)}, nil
}
