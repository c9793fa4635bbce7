package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gudang/internal/models"
	"gudang/internal/query"

	"github.com/google/uuid"
)

// MemoryItemRepository is an in-memory implementation of ItemRepository.
type MemoryItemRepository struct {
	items map[string]models.Item
	order []string
	now   func() time.Time
	mu    sync.RWMutex
}

// NewMemoryItemRepository creates a new instance of MemoryItemRepository.
func NewMemoryItemRepository() *MemoryItemRepository {
	return &MemoryItemRepository{
		items: make(map[string]models.Item),
		now:   time.Now,
	}
}

// FindByOwner returns the owner's items matching filter.
func (r *MemoryItemRepository) FindByOwner(_ context.Context, ownerID string, filter query.Filter) ([]models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	itemList := []models.Item{}
	for _, id := range r.order {
		item := r.items[id]
		if item.OwnerID == ownerID && filter.Matches(item) {
			itemList = append(itemList, item.Clone())
		}
	}
	return itemList, nil
}

// FindOne returns an item of the owner by its ID.
func (r *MemoryItemRepository) FindOne(_ context.Context, id, ownerID string) (*models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok || item.OwnerID != ownerID {
		return nil, fmt.Errorf("item with ID %s: %w", id, ErrItemNotFound)
	}
	out := item.Clone()
	return &out, nil
}

// Insert adds a new item.
func (r *MemoryItemRepository) Insert(_ context.Context, item *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("item with ID %s already exists", item.ID)
	}
	now := r.now()
	item.CreatedAt = now
	item.UpdatedAt = now
	r.items[item.ID] = item.Clone()
	r.order = append(r.order, item.ID)
	return nil
}

// Replace merges the patch into the stored item under the write lock.
func (r *MemoryItemRepository) Replace(_ context.Context, id, ownerID string, patch models.ItemPatch) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok || item.OwnerID != ownerID {
		return nil, fmt.Errorf("item with ID %s not found for update: %w", id, ErrItemNotFound)
	}
	item = item.Clone()
	patch.Apply(&item)
	item.UpdatedAt = r.now()
	r.items[id] = item
	out := item.Clone()
	return &out, nil
}

// Remove deletes an item of the owner.
func (r *MemoryItemRepository) Remove(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok || item.OwnerID != ownerID {
		return fmt.Errorf("item with ID %s not found for deletion: %w", id, ErrItemNotFound)
	}
	delete(r.items, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Categories returns the owner's distinct categories.
func (r *MemoryItemRepository) Categories(_ context.Context, ownerID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]bool{}
	categories := []string{}
	for _, item := range r.items {
		if item.OwnerID == ownerID && !seen[item.Category] {
			seen[item.Category] = true
			categories = append(categories, item.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}
