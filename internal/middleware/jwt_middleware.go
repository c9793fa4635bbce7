package middleware

import (
	"strings"

	"gudang/internal/services"

	"github.com/apex/log"
	"github.com/gofiber/fiber/v2"
)

const ownerIDKey = "owner_id"

// AuthRequired is a Fiber middleware to check for a valid JWT token. On
// success the token's owner identifier is available through OwnerID.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	logTags := log.Fields{"package": "gudang", "module": "middleware", "component": "auth"}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err == nil {
			var ownerID string
			if ownerID, err = services.OwnerID(claims); err == nil {
				c.Locals(ownerIDKey, ownerID)
				c.Locals("username", claims["username"])
				return c.Next()
			}
		}

		log.WithFields(logTags).WithError(err).Debug("JWT validation failed")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid or expired token",
			"error":   err.Error(),
		})
	}
}

// OwnerID returns the owner established by AuthRequired, or "" when the
// request is unauthenticated.
func OwnerID(c *fiber.Ctx) string {
	ownerID, _ := c.Locals(ownerIDKey).(string)
	return ownerID
}
