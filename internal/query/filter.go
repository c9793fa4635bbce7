// Package query turns a search term and category selection into an item predicate.
package query

import (
	"strings"
	"unicode/utf8"

	"gudang/internal/models"
)

// Filter selects items within one owner's scope. A nil or empty field applies no
// restriction; set fields combine with logical AND.
type Filter struct {
	// Term matches when the item name contains it, ASCII case-insensitively.
	Term *string `json:"term,omitempty"`
	// Category matches the item category exactly, case-sensitively.
	Category *string `json:"category,omitempty"`
}

// NewFilter builds a normalized filter from raw request values.
func NewFilter(term, category string) Filter {
	return Filter{Term: &term, Category: &category}.Normalize()
}

// Normalize drops empty criteria so that "" and nil behave the same.
func (f Filter) Normalize() Filter {
	out := Filter{}
	if f.Term != nil && *f.Term != "" {
		term := *f.Term
		out.Term = &term
	}
	if f.Category != nil && *f.Category != "" {
		category := *f.Category
		out.Category = &category
	}
	return out
}

// IsZero reports whether the filter restricts nothing.
func (f Filter) IsZero() bool {
	n := f.Normalize()
	return n.Term == nil && n.Category == nil
}

// Matches evaluates the filter against a single item.
func (f Filter) Matches(item models.Item) bool {
	n := f.Normalize()
	if n.Category != nil && item.Category != *n.Category {
		return false
	}
	if n.Term != nil && !ContainsFold(item.Name, *n.Term) {
		return false
	}
	return true
}

// Apply returns the items matching the filter, preserving order.
func (f Filter) Apply(items []models.Item) []models.Item {
	out := make([]models.Item, 0, len(items))
	for _, item := range items {
		if f.Matches(item) {
			out = append(out, item)
		}
	}
	return out
}

// ContainsFold reports whether substr is within s under ASCII case folding.
// Non-ASCII bytes must match exactly.
func ContainsFold(s, substr string) bool {
	return strings.Contains(lowerASCII(s), lowerASCII(substr))
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// NamePattern returns the LIKE pattern a SQL store can use to pre-select names
// by term. ok is false without a term, or when the term holds non-ASCII bytes:
// a database LOWER may fold those, so matching them is left to Matches.
func (f Filter) NamePattern() (pattern string, ok bool) {
	n := f.Normalize()
	if n.Term == nil || !isASCII(*n.Term) {
		return "", false
	}
	return LikePattern(*n.Term), true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// LikePattern renders term as a LIKE pattern for "contains", escaping the LIKE
// wildcards with '\'.
func LikePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(lowerASCII(term)) + "%"
}
