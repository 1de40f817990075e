package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/wolram/jobapp/internal/services"
)

const userIDKey = "userID"

// NewAuthMiddleware rejects requests without a valid bearer token before any
// body parsing happens. The resolved user ID is stored on the request.
func NewAuthMiddleware(tokenService services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := tokenService.Validate(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

func requestUserID(c *fiber.Ctx) uuid.UUID {
	if id, ok := c.Locals(userIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
