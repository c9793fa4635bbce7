package handlers

import (
	"errors"
	"fmt"

	"gudang/internal/aggregate"
	"gudang/internal/invalidation"
	"gudang/internal/middleware"
	"gudang/internal/models"
	"gudang/internal/query"
	"gudang/internal/services"

	"github.com/apex/log"
	"github.com/gofiber/fiber/v2"
)

// ItemHandler handles HTTP requests for the caller's items.
type ItemHandler struct {
	service *services.ItemService
	tracker *invalidation.Tracker
	logTags log.Fields
}

// NewItemHandler creates a new ItemHandler. With a tracker, reads carry weak
// ETags and honour If-None-Match.
func NewItemHandler(service *services.ItemService, tracker *invalidation.Tracker) *ItemHandler {
	return &ItemHandler{
		service: service,
		tracker: tracker,
		logTags: log.Fields{"package": "gudang", "module": "handlers", "component": "items"},
	}
}

// RegisterRoutes registers the item routes. The router must already run
// middleware.AuthRequired.
func (h *ItemHandler) RegisterRoutes(router fiber.Router) {
	itemRoutes := router.Group("/items")
	itemRoutes.Get("/", h.HandleSearchItems)
	itemRoutes.Get("/categories", h.HandleListCategories)
	itemRoutes.Get("/:id", h.HandleGetItem)
	itemRoutes.Post("/", h.HandleCreateItem)
	itemRoutes.Patch("/:id", h.HandleUpdateItem)
	itemRoutes.Delete("/:id", h.HandleDeleteItem)
}

// HandleSearchItems lists the caller's items filtered by ?q= and ?category=,
// with per-row values and the total value of the matching items.
func (h *ItemHandler) HandleSearchItems(c *fiber.Ctx) error {
	ownerID := middleware.OwnerID(c)
	etag := h.etag(invalidation.ListOf(ownerID))
	if h.revalidate(c, etag) {
		return c.SendStatus(fiber.StatusNotModified)
	}

	filter := query.NewFilter(c.Query("q"), c.Query("category"))
	summary, err := h.service.SearchItems(c.UserContext(), ownerID, filter)
	if err != nil {
		return h.fail(c, "search items", err)
	}
	return c.JSON(fiber.Map{
		"items":       summary.Items,
		"count":       summary.Count,
		"total_stock": summary.TotalStock,
		"total_value": summary.TotalValue,
		"filter":      filter,
	})
}

// HandleListCategories lists the distinct categories of the caller's items.
func (h *ItemHandler) HandleListCategories(c *fiber.Ctx) error {
	ownerID := middleware.OwnerID(c)
	etag := h.etag(invalidation.ListOf(ownerID))
	if h.revalidate(c, etag) {
		return c.SendStatus(fiber.StatusNotModified)
	}

	categories, err := h.service.ListCategories(c.UserContext(), ownerID)
	if err != nil {
		return h.fail(c, "list categories", err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// HandleGetItem returns one item. The id parameter may be a bare id or a
// detail slug "<id>--<name>".
func (h *ItemHandler) HandleGetItem(c *fiber.Ctx) error {
	ownerID := middleware.OwnerID(c)
	itemID := aggregate.IDFromSlug(c.Params("id"))
	etag := h.etag(invalidation.DetailOf(ownerID, itemID))

	item, err := h.service.GetItem(c.UserContext(), itemID, ownerID)
	if err != nil {
		return h.fail(c, "get item", err)
	}
	if h.revalidate(c, etag) {
		return c.SendStatus(fiber.StatusNotModified)
	}
	return c.JSON(aggregate.NewRow(*item))
}

// HandleCreateItem creates a new item owned by the caller.
func (h *ItemHandler) HandleCreateItem(c *fiber.Ctx) error {
	var input models.ItemInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(c, err)
	}

	item, err := h.service.CreateItem(c.UserContext(), middleware.OwnerID(c), input)
	if err != nil {
		return h.fail(c, "create item", err)
	}
	return c.Status(fiber.StatusCreated).JSON(aggregate.NewRow(*item))
}

// HandleUpdateItem applies a partial update; fields missing from the body
// are left untouched.
func (h *ItemHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var input models.ItemInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(c, err)
	}

	itemID := aggregate.IDFromSlug(c.Params("id"))
	item, err := h.service.UpdateItem(c.UserContext(), itemID, middleware.OwnerID(c), input)
	if err != nil {
		return h.fail(c, "update item", err)
	}
	return c.JSON(aggregate.NewRow(*item))
}

// HandleDeleteItem permanently deletes an item.
func (h *ItemHandler) HandleDeleteItem(c *fiber.Ctx) error {
	itemID := aggregate.IDFromSlug(c.Params("id"))
	if err := h.service.DeleteItem(c.UserContext(), itemID, middleware.OwnerID(c)); err != nil {
		return h.fail(c, "delete item", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Item %s deleted successfully", itemID),
	})
}

// etag is read before the data it describes, so a concurrent mutation can
// only make it older than the body, never newer.
func (h *ItemHandler) etag(view invalidation.View) string {
	if h.tracker == nil {
		return ""
	}
	return h.tracker.ETag(view)
}

// revalidate sets the validator headers and reports whether the client copy is current.
func (h *ItemHandler) revalidate(c *fiber.Ctx, etag string) bool {
	if etag == "" {
		return false
	}
	c.Set(fiber.HeaderETag, etag)
	c.Set(fiber.HeaderCacheControl, "private, no-cache")
	return c.Get(fiber.HeaderIfNoneMatch) == etag
}

// fail maps service error kinds onto distinct HTTP statuses.
func (h *ItemHandler) fail(c *fiber.Ctx, op string, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
	case errors.Is(err, services.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	case errors.Is(err, services.ErrNotFoundOrUnauthorized):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Item not found",
		})
	case errors.Is(err, services.ErrStoreUnavailable):
		log.WithFields(h.logTags).WithError(err).Errorf("Failed to %s", op)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Item store unavailable, please try again",
		})
	}
	log.WithFields(h.logTags).WithError(err).Errorf("Unexpected failure to %s", op)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": fmt.Sprintf("Could not %s", op),
		"error":   err.Error(),
	})
}

func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
