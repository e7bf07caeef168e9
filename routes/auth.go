package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meropanditlama/booking-api/controllers"
)

func SetupAuthRoutes(api fiber.Router, h *controllers.Handler, deps Deps) {
	auth := api.Group("/auth")
	auth.Post("/signup", deps.limiter(), h.Register)
	auth.Post("/login", deps.limiter(), h.Login)

	api.Get("/profile", deps.Protected, h.GetProfile)
	api.Put("/profile", deps.Protected, h.UpdateProfile)
}
