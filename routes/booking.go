package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meropanditlama/booking-api/controllers"
)

func SetupBookingRoutes(api fiber.Router, h *controllers.Handler, deps Deps) {
	bookings := api.Group("/bookings", deps.Protected)
	bookings.Get("/", h.GetBookings)
	bookings.Post("/", deps.idempotency(), h.CreateBooking)
	bookings.Get("/:id", h.GetBooking)
	bookings.Post("/:id/confirm", h.ConfirmBooking)
	bookings.Post("/:id/reject", h.RejectBooking)
	bookings.Post("/:id/cancel", h.CancelBooking)
	bookings.Post("/:id/complete", h.CompleteBooking)
	bookings.Post("/:id/review", h.AddReview)

	api.Get("/history", deps.Protected, h.GetHistory)
}
