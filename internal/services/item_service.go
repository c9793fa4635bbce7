package services

import (
	"context"
	"errors"
	"fmt"

	"gudang/internal/aggregate"
	"gudang/internal/invalidation"
	"gudang/internal/models"
	"gudang/internal/query"
	"gudang/internal/repositories"

	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
)

// ItemService handles owner-scoped item reads and mutations.
//
// Every operation takes the owner explicitly. The service keeps no state of
// its own; the repository is the only shared resource.
type ItemService struct {
	repo        repositories.ItemRepository
	coordinator invalidation.Coordinator
	validate    *validator.Validate
	logTags     log.Fields
}

// NewItemService creates a new ItemService. A nil coordinator discards signals.
func NewItemService(repo repositories.ItemRepository, coordinator invalidation.Coordinator) *ItemService {
	if coordinator == nil {
		coordinator = invalidation.Discard
	}
	return &ItemService{
		repo:        repo,
		coordinator: coordinator,
		validate:    models.NewValidator(),
		logTags:     log.Fields{"package": "gudang", "module": "services", "component": "item-service"},
	}
}

// SearchItems lists the owner's items matching filter, with per-row values
// and totals computed over the matching items only.
func (s *ItemService) SearchItems(ctx context.Context, ownerID string, filter query.Filter) (aggregate.Summary, error) {
	if ownerID == "" {
		return aggregate.Summary{}, ErrNotFoundOrUnauthorized
	}
	items, err := s.repo.FindByOwner(ctx, ownerID, filter.Normalize())
	if err != nil {
		return aggregate.Summary{}, storeError("search items", err)
	}
	return aggregate.Summarize(items), nil
}

// GetItem returns one of the owner's items.
func (s *ItemService) GetItem(ctx context.Context, id, ownerID string) (*models.Item, error) {
	if ownerID == "" || id == "" {
		return nil, ErrNotFoundOrUnauthorized
	}
	item, err := s.repo.FindOne(ctx, id, ownerID)
	if err != nil {
		return nil, storeError("get item", err)
	}
	return item, nil
}

// ListCategories returns the distinct categories the owner uses.
func (s *ItemService) ListCategories(ctx context.Context, ownerID string) ([]string, error) {
	if ownerID == "" {
		return nil, ErrNotFoundOrUnauthorized
	}
	categories, err := s.repo.Categories(ctx, ownerID)
	if err != nil {
		return nil, storeError("list categories", err)
	}
	return categories, nil
}

// CreateItem validates, normalizes and stores a new item for the owner.
func (s *ItemService) CreateItem(ctx context.Context, ownerID string, in models.ItemInput) (*models.Item, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	in = normalizeInput(in)
	if err := validateInput(s.validate, in, true); err != nil {
		return nil, err
	}

	item := newItem(ownerID, in)
	if err := s.repo.Insert(ctx, item); err != nil {
		return nil, storeError("create item", err)
	}

	s.coordinator.Invalidate(ctx, invalidation.NewSignal(invalidation.OpCreate, ownerID, item.ID))
	log.WithFields(s.logTags).WithFields(log.Fields{"owner": ownerID, "item": item.ID}).Debug("Item created")
	return item, nil
}

// UpdateItem replaces only the supplied fields of one of the owner's items.
func (s *ItemService) UpdateItem(ctx context.Context, id, ownerID string, in models.ItemInput) (*models.Item, error) {
	if _, err := s.GetItem(ctx, id, ownerID); err != nil {
		return nil, err
	}
	in = normalizeInput(in)
	if err := validateInput(s.validate, in, false); err != nil {
		return nil, err
	}

	item, err := s.repo.Replace(ctx, id, ownerID, toPatch(in))
	if err != nil {
		return nil, storeError("update item", err)
	}

	s.coordinator.Invalidate(ctx, invalidation.NewSignal(invalidation.OpUpdate, ownerID, id))
	log.WithFields(s.logTags).WithFields(log.Fields{"owner": ownerID, "item": id}).Debug("Item updated")
	return item, nil
}

// DeleteItem permanently removes one of the owner's items. Deleting an item
// that is already gone reports ErrNotFoundOrUnauthorized.
func (s *ItemService) DeleteItem(ctx context.Context, id, ownerID string) error {
	if _, err := s.GetItem(ctx, id, ownerID); err != nil {
		return err
	}
	if err := s.repo.Remove(ctx, id, ownerID); err != nil {
		return storeError("delete item", err)
	}

	s.coordinator.Invalidate(ctx, invalidation.NewSignal(invalidation.OpDelete, ownerID, id))
	log.WithFields(s.logTags).WithFields(log.Fields{"owner": ownerID, "item": id}).Debug("Item deleted")
	return nil
}

// storeError maps a repository failure onto the service error kinds.
func storeError(op string, err error) error {
	if errors.Is(err, repositories.ErrItemNotFound) {
		return ErrNotFoundOrUnauthorized
	}
	return fmt.Errorf("failed to %s: %w: %w", op, ErrStoreUnavailable, err)
}
