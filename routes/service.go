package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meropanditlama/booking-api/controllers"
)

func SetupServiceRoutes(api fiber.Router, h *controllers.Handler) {
	api.Get("/services", h.GetAllServices)

	providers := api.Group("/providers")
	providers.Get("/", h.ListProviders)
	providers.Get("/:id", h.GetProvider)
	providers.Get("/:id/availability", h.GetProviderAvailability)
	providers.Get("/:id/reviews", h.GetProviderReviews)
}
