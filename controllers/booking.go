package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meropanditlama/booking-api/booking"
	"github.com/meropanditlama/booking-api/models"
	"github.com/meropanditlama/booking-api/utils"
)

// bookingView adds whether the caller may still cancel.
type bookingView struct {
	*models.Booking
	CanCancel bool `json:"can_cancel"`
}

func viewOf(b *models.Booking, now time.Time) bookingView {
	return bookingView{Booking: b, CanCancel: b.CanCancel(now)}
}

func viewsOf(bookings []models.Booking, now time.Time) []bookingView {
	views := make([]bookingView, 0, len(bookings))
	for i := range bookings {
		views = append(views, viewOf(&bookings[i], now))
	}
	return views
}

var naiveLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02 15:04"}

// parseRequestedDatetime accepts RFC 3339 or a zone-less timestamp, which is
// read in the service's local zone.
func parseRequestedDatetime(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, utils.NewValidationError("requested_datetime", "This field is required.")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, utils.NewValidationError("requested_datetime", "Datetime has wrong format. Use YYYY-MM-DDThh:mm[:ss][+HH:MM].")
}

type BookingInput struct {
	ProviderID        uint   `json:"provider_id"`
	ServiceID         uint   `json:"service_id"`
	RequestedDatetime string `json:"requested_datetime"`
	DurationMinutes   int    `json:"duration_minutes"`
	Notes             string `json:"notes"`
}

// CreateBooking godoc
// @Summary Create booking
// @Description Book a provider for the authenticated customer. Honors Idempotency-Key.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param booking body BookingInput true "Booking request"
// @Success 201 {object} bookingView
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/bookings [post]
func (h *Handler) CreateBooking(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return h.respondError(c, err)
	}
	input := new(BookingInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Invalid request body")
	}
	start, err := parseRequestedDatetime(input.RequestedDatetime, h.Bookings.Location())
	if err != nil {
		return h.respondError(c, err)
	}
	if input.DurationMinutes == 0 {
		input.DurationMinutes = models.DefaultDurationMinutes
	}

	created, err := h.Bookings.CreateBooking(c.UserContext(), a, booking.CreateRequest{
		ProviderID:        input.ProviderID,
		ServiceID:         input.ServiceID,
		RequestedDatetime: start,
		DurationMinutes:   input.DurationMinutes,
		Notes:             input.Notes,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Booking request sent successfully",
		"booking": viewOf(created, time.Now()),
	})
}

// GetBookings godoc
// @Summary List bookings
// @Description List the caller's bookings, newest first
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, confirmed, completed or cancelled"
// @Success 200 {array} bookingView
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/bookings [get]
func (h *Handler) GetBookings(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return h.respondError(c, err)
	}
	bookings, err := h.Bookings.ListBookings(c.UserContext(), a, c.Query("status"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(viewsOf(bookings, time.Now()))
}

// GetBooking godoc
// @Summary Get booking
// @Description Get a booking the caller is a party to
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} bookingView
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/bookings/{id} [get]
func (h *Handler) GetBooking(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return h.respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return h.respondError(c, err)
	}
	b, err := h.Bookings.GetBooking(c.UserContext(), a, id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(viewOf(b, time.Now()))
}

type reasonInput struct {
	Reason string `json:"reason"`
}

// ConfirmBooking godoc
// @Summary Confirm booking
// @Description Confirm a pending booking and mark covering slots booked
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} bookingView
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/bookings/{id}/confirm [post]
func (h *Handler) ConfirmBooking(c *fiber.Ctx) error {
	return h.transition(c, "Booking confirmed", func(a booking.Actor, id uint, _ string) (*models.Booking, error) {
		return h.Bookings.ConfirmBooking(c.UserContext(), a, id)
	})
}

// RejectBooking godoc
// @Summary Reject booking
// @Description Reject a pending booking
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Param reason body reasonInput false "Reason"
// @Success 200 {object} bookingView
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/bookings/{id}/reject [post]
func (h *Handler) RejectBooking(c *fiber.Ctx) error {
	return h.transition(c, "Booking rejected", func(a booking.Actor, id uint, reason string) (*models.Booking, error) {
		return h.Bookings.RejectBooking(c.UserContext(), a, id, reason)
	})
}

// CancelBooking godoc
// @Summary Cancel booking
// @Description Cancel a pending or confirmed booking
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Param reason body reasonInput false "Reason"
// @Success 200 {object} bookingView
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/bookings/{id}/cancel [post]
func (h *Handler) CancelBooking(c *fiber.Ctx) error {
	return h.transition(c, "Booking cancelled", func(a booking.Actor, id uint, reason string) (*models.Booking, error) {
		return h.Bookings.CancelBooking(c.UserContext(), a, id, reason)
	})
}

// CompleteBooking godoc
// @Summary Complete booking
// @Description Mark a confirmed booking as completed
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} bookingView
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/bookings/{id}/complete [post]
func (h *Handler) CompleteBooking(c *fiber.Ctx) error {
	return h.transition(c, "Booking marked as completed", func(a booking.Actor, id uint, _ string) (*models.Booking, error) {
		return h.Bookings.CompleteBooking(c.UserContext(), a, id)
	})
}

type transitionFunc func(a booking.Actor, id uint, reason string) (*models.Booking, error)

func (h *Handler) transition(c *fiber.Ctx, message string, fn transitionFunc) error {
	a, err := actor(c)
	if err != nil {
		return h.respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return h.respondError(c, err)
	}
	input := new(reasonInput)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(input); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	b, err := fn(a, id, input.Reason)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": message,
		"booking": viewOf(b, time.Now()),
	})
}

type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// AddReview godoc
// @Summary Review booking
// @Description Rate a completed booking
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Param review body ReviewInput true "Review"
// @Success 201 {object} models.Review
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/bookings/{id}/review [post]
func (h *Handler) AddReview(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return h.respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return h.respondError(c, err)
	}
	input := new(ReviewInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Invalid request body")
	}
	review, err := h.Bookings.AddReview(c.UserContext(), a, id, input.Rating, input.Comment)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Review submitted successfully",
		"review":  review,
	})
}

// GetHistory godoc
// @Summary Booking history
// @Description Get upcoming, completed and cancelled bookings
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]bookingView
// @Failure 401 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/history [get]
func (h *Handler) GetHistory(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return h.respondError(c, err)
	}
	history, err := h.Bookings.History(c.UserContext(), a)
	if err != nil {
		return h.respondError(c, err)
	}
	now := time.Now()
	return c.JSON(fiber.Map{
		"upcoming":  viewsOf(history.Upcoming, now),
		"completed": viewsOf(history.Completed, now),
		"cancelled": viewsOf(history.Cancelled, now),
	})
}
