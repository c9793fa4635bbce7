package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gudang/internal/models"
	"gudang/internal/query"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMItemRepository is a GORM implementation of ItemRepository.
type GORMItemRepository struct {
	db *gorm.DB
}

// NewGORMItemRepository creates a new instance of GORMItemRepository.
func NewGORMItemRepository(db *gorm.DB) *GORMItemRepository {
	return &GORMItemRepository{
		db: db,
	}
}

// FindByOwner retrieves the owner's items matching filter.
//
// An ASCII name term is pushed down as a LIKE on LOWER(name) to narrow the
// scan. The filter is then re-applied in Go so that every backend folds case
// identically.
func (r *GORMItemRepository) FindByOwner(ctx context.Context, ownerID string, filter query.Filter) ([]models.Item, error) {
	filter = filter.Normalize()
	tx := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if filter.Category != nil {
		tx = tx.Where("category = ?", *filter.Category)
	}
	if pattern, ok := filter.NamePattern(); ok {
		tx = tx.Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
	}

	var items []models.Item
	if err := tx.Order("created_at, id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list items of owner %s: %w", ownerID, err)
	}
	return filter.Apply(items), nil
}

// FindOne retrieves a single item of the owner.
func (r *GORMItemRepository) FindOne(ctx context.Context, id, ownerID string) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item with ID %s: %w", id, ErrItemNotFound)
		}
		return nil, fmt.Errorf("failed to get item by ID %s: %w", id, err)
	}
	return &item, nil
}

// Insert creates a new item in the database.
func (r *GORMItemRepository) Insert(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// Replace writes only the patched columns in a single UPDATE, then reads the
// row back inside the same transaction.
func (r *GORMItemRepository) Replace(ctx context.Context, id, ownerID string, patch models.ItemPatch) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		columns := patch.Columns()
		columns["updated_at"] = time.Now()

		res := tx.Model(&models.Item{}).Where("id = ? AND owner_id = ?", id, ownerID).Updates(columns)
		if res.Error != nil {
			return fmt.Errorf("failed to update item %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("item with ID %s not found for update: %w", id, ErrItemNotFound)
		}
		if err := tx.First(&item, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
			return fmt.Errorf("failed to reload item %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Remove deletes an item of the owner from the database.
func (r *GORMItemRepository) Remove(ctx context.Context, id, ownerID string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Item{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item with ID %s not found for deletion: %w", id, ErrItemNotFound)
	}
	return nil
}

// Categories lists the distinct categories of the owner's items.
func (r *GORMItemRepository) Categories(ctx context.Context, ownerID string) ([]string, error) {
	categories := []string{}
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("owner_id = ?", ownerID).
		Distinct().
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories of owner %s: %w", ownerID, err)
	}
	sort.Strings(categories)
	return categories, nil
}
