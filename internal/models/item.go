package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item represents one inventory record owned by exactly one user.
type Item struct {
	ID             string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID        string          `json:"owner_id" gorm:"type:varchar(36);not null;index:idx_items_owner_category,priority:1"`
	Name           string          `json:"name" gorm:"type:varchar(255);not null"`
	Description    *string         `json:"description,omitempty" gorm:"type:text"`
	Category       string          `json:"category" gorm:"type:varchar(100);not null;index:idx_items_owner_category,priority:2"`
	Price          decimal.Decimal `json:"price" gorm:"type:numeric;not null"`
	Stock          int             `json:"stock" gorm:"not null"`
	ImageReference *string         `json:"image_reference,omitempty" gorm:"type:text"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ItemInput carries caller supplied item fields. A nil field is "not supplied":
// create requires name, category, price and stock; update replaces only the
// fields that are set.
type ItemInput struct {
	Name           *string          `json:"name" validate:"omitnil,min=1"`
	Description    *string          `json:"description"`
	Category       *string          `json:"category" validate:"omitnil,min=1"`
	Price          *decimal.Decimal `json:"price" validate:"omitnil,gte=0"`
	Stock          *int             `json:"stock" validate:"omitnil,gte=0"`
	ImageReference *string          `json:"image_reference"`
}

// ItemPatch is a normalized partial update handed to the store.
//
// For the optional text fields a set ClearX flag wins over X and stores "absent".
type ItemPatch struct {
	Name                *string
	Description         *string
	ClearDescription    bool
	Category            *string
	Price               *decimal.Decimal
	Stock               *int
	ImageReference      *string
	ClearImageReference bool
}

// Apply copies the patched fields onto item. It does not touch UpdatedAt.
func (p ItemPatch) Apply(item *Item) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.ClearDescription {
		item.Description = nil
	} else if p.Description != nil {
		v := *p.Description
		item.Description = &v
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Stock != nil {
		item.Stock = *p.Stock
	}
	if p.ClearImageReference {
		item.ImageReference = nil
	} else if p.ImageReference != nil {
		v := *p.ImageReference
		item.ImageReference = &v
	}
}

// Columns returns the store column values written by this patch.
func (p ItemPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.ClearDescription {
		cols["description"] = nil
	} else if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	if p.Stock != nil {
		cols["stock"] = *p.Stock
	}
	if p.ClearImageReference {
		cols["image_reference"] = nil
	} else if p.ImageReference != nil {
		cols["image_reference"] = *p.ImageReference
	}
	return cols
}

// Clone returns a deep copy so callers never share pointer fields with the store.
func (i Item) Clone() Item {
	out := i
	if i.Description != nil {
		v := *i.Description
		out.Description = &v
	}
	if i.ImageReference != nil {
		v := *i.ImageReference
		out.ImageReference = &v
	}
	return out
}
