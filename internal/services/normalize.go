package services

import (
	"errors"
	"fmt"
	"strings"

	"gudang/internal/models"

	"github.com/go-playground/validator/v10"
)

// normalizeInput trims every supplied text field. Create and update both go
// through here so the same invariants hold on every path.
func normalizeInput(in models.ItemInput) models.ItemInput {
	out := in
	out.Name = trimmed(in.Name)
	out.Description = trimmed(in.Description)
	out.Category = trimmed(in.Category)
	out.ImageReference = trimmed(in.ImageReference)
	return out
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// optional maps an empty optional text value to "absent".
func optional(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// validateInput checks a normalized input. With requireAll every mandatory
// field must be present (create); otherwise only supplied fields are checked.
func validateInput(v *validator.Validate, in models.ItemInput, requireAll bool) error {
	verr := &ValidationError{}
	if requireAll {
		if in.Name == nil {
			verr.add("name", "is required")
		}
		if in.Category == nil {
			verr.add("category", "is required")
		}
		if in.Price == nil {
			verr.add("price", "is required")
		}
		if in.Stock == nil {
			verr.add("stock", "is required")
		}
	}

	if err := v.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("failed to validate item input: %w", err)
		}
		for _, fe := range fieldErrs {
			verr.add(fe.Field(), describe(fe))
		}
	}

	// The validator sees prices as float64; the sign check stays exact.
	if in.Price != nil && in.Price.IsNegative() {
		verr.add("price", "must not be negative")
	}

	if verr.empty() {
		return nil
	}
	return verr
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return "must not be blank"
	case "gte":
		return "must not be negative"
	}
	return fmt.Sprintf("failed on the '%s' tag", fe.Tag())
}

// newItem builds the record to insert from a normalized, validated input.
func newItem(ownerID string, in models.ItemInput) *models.Item {
	return &models.Item{
		OwnerID:        ownerID,
		Name:           *in.Name,
		Description:    optional(in.Description),
		Category:       *in.Category,
		Price:          *in.Price,
		Stock:          *in.Stock,
		ImageReference: optional(in.ImageReference),
	}
}

// toPatch turns a normalized, validated input into a store patch. Supplied
// empty optional fields clear the stored value.
func toPatch(in models.ItemInput) models.ItemPatch {
	patch := models.ItemPatch{
		Name:     in.Name,
		Category: in.Category,
		Price:    in.Price,
		Stock:    in.Stock,
	}
	if in.Description != nil {
		patch.Description = optional(in.Description)
		patch.ClearDescription = patch.Description == nil
	}
	if in.ImageReference != nil {
		patch.ImageReference = optional(in.ImageReference)
		patch.ClearImageReference = patch.ImageReference == nil
	}
	return patch
}
