package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meropanditlama/booking-api/controllers"
	"github.com/meropanditlama/booking-api/middleware"
	"github.com/meropanditlama/booking-api/models"
)

// SetupProviderRoutes mounts the provider's own profile, dashboard and slots.
func SetupProviderRoutes(api fiber.Router, h *controllers.Handler, deps Deps) {
	provider := api.Group("/provider", deps.Protected, middleware.RequireRole(models.RoleProvider))
	provider.Get("/profile", h.GetProviderProfile)
	provider.Put("/profile", h.UpdateProviderProfile)
	provider.Get("/dashboard", h.GetDashboard)

	provider.Get("/availability", h.GetAvailability)
	provider.Post("/availability", h.CreateAvailability)
	provider.Put("/availability/:id", h.UpdateAvailability)
	provider.Delete("/availability/:id", h.DeleteAvailability)
}
