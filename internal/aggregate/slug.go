package aggregate

import (
	"strings"

	"gudang/internal/models"

	"github.com/gosimple/slug"
)

const slugSeparator = "--"

// Slug renders the detail page handle of an item: "<id>--<kebab-name>".
// Names are transliterated, so "Cây xanh" becomes "cay-xanh".
func Slug(item models.Item) string {
	name := slug.Make(item.Name)
	if name == "" {
		return item.ID
	}
	return item.ID + slugSeparator + name
}

// IDFromSlug extracts the item id from a slug. A bare id is returned as is.
func IDFromSlug(ref string) string {
	id, _, _ := strings.Cut(ref, slugSeparator)
	return id
}
