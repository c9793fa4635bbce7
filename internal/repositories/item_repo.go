package repositories

import (
	"context"
	"errors"

	"gudang/internal/models"
	"gudang/internal/query"
)

// ErrItemNotFound is returned when an item does not exist within the caller's
// owner scope. An item held by another owner is reported the same way.
var ErrItemNotFound = errors.New("item not found")

// ItemRepository defines owner-scoped item persistence. No method ever reads
// or writes an item whose owner differs from the ownerID it was given.
type ItemRepository interface {
	// FindByOwner lists the owner's items matching filter in insertion order.
	FindByOwner(ctx context.Context, ownerID string, filter query.Filter) ([]models.Item, error)
	// FindOne returns one item of the owner.
	FindOne(ctx context.Context, id, ownerID string) (*models.Item, error)
	// Insert stores a new item, assigning ID and timestamps.
	Insert(ctx context.Context, item *models.Item) error
	// Replace atomically writes the patched fields and refreshes UpdatedAt.
	// Fields absent from the patch keep their stored value.
	Replace(ctx context.Context, id, ownerID string, patch models.ItemPatch) (*models.Item, error)
	// Remove permanently deletes one item of the owner.
	Remove(ctx context.Context, id, ownerID string) error
	// Categories lists the distinct categories in use by the owner, sorted.
	Categories(ctx context.Context, ownerID string) ([]string, error)
}
