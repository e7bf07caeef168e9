package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meropanditlama/booking-api/models"
	"github.com/meropanditlama/booking-api/utils"
)

// RequireRole checks the role carried by the token. Roles never change after
// signup, so no database lookup is needed.
func RequireRole(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := Identity(c)
		if !ok {
			return unauthorized(c, "Authentication required")
		}
		if actor.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
				Message: "You don't have the required role to perform this action",
				Kind:    string(utils.KindAuthorization),
			})
		}
		return c.Next()
	}
}
