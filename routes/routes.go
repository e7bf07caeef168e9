package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meropanditlama/booking-api/controllers"
)

// Deps carries the middleware shared by several route groups.
type Deps struct {
	Protected   fiber.Handler
	AuthLimiter fiber.Handler
	Idempotency fiber.Handler
}

func (d Deps) limiter() fiber.Handler {
	if d.AuthLimiter == nil {
		return passThrough
	}
	return d.AuthLimiter
}

func (d Deps) idempotency() fiber.Handler {
	if d.Idempotency == nil {
		return passThrough
	}
	return d.Idempotency
}

func passThrough(c *fiber.Ctx) error { return c.Next() }

// Setup mounts every route group under /api.
func Setup(app *fiber.App, h *controllers.Handler, deps Deps) {
	api := app.Group("/api")
	SetupAuthRoutes(api, h, deps)
	SetupServiceRoutes(api, h)
	SetupProviderRoutes(api, h, deps)
	SetupBookingRoutes(api, h, deps)
}
