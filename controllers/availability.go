package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meropanditlama/booking-api/booking"
)

type SlotInput struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Notes     string `json:"notes"`
}

type SlotUpdateInput struct {
	Date      *string `json:"date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Notes     *string `json:"notes"`
}

// GetAvailability godoc
// @Summary List own slots
// @Description List the provider's own availability slots, optionally between date_from and date_to
// @Tags availability
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Param free_only query bool false "Only unbooked slots"
// @Success 200 {array} models.AvailabilitySlot
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/provider/availability [get]
func (h *Handler) GetAvailability(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return h.respondError(c, err)
	}
	ctx := c.UserContext()
	profile, err := h.Bookings.ProviderProfile(ctx, a)
	if err != nil {
		return h.respondError(c, err)
	}
	slots, err := h.Bookings.ListSlots(ctx, profile.ID, booking.SlotFilter{
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
		FreeOnly: c.QueryBool("free_only"),
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(slots)
}

// CreateAvailability godoc
// @Summary Create slot
// @Description Create an availability slot for the authenticated provider
// @Tags availability
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slot body SlotInput true "Slot"
// @Success 201 {object} models.AvailabilitySlot
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/provider/availability [post]
func (h *Handler) CreateAvailability(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return h.respondError(c, err)
	}
	input := new(SlotInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	slot, err := h.Bookings.CreateSlot(c.UserContext(), a, booking.SlotInput{
		Date:      input.Date,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Notes:     input.Notes,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(slot)
}

// UpdateAvailability godoc
// @Summary Update slot
// @Description Update an unbooked availability slot
// @Tags availability
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Slot ID"
// @Param slot body SlotUpdateInput true "Slot fields"
// @Success 200 {object} models.AvailabilitySlot
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/provider/availability/{id} [put]
func (h *Handler) UpdateAvailability(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return h.respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return h.respondError(c, err)
	}
	input := new(SlotUpdateInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	slot, err := h.Bookings.UpdateSlot(c.UserContext(), a, id, booking.SlotUpdate{
		Date:      input.Date,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Notes:     input.Notes,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(slot)
}

// DeleteAvailability godoc
// @Summary Delete slot
// @Description Delete an unbooked availability slot
// @Tags availability
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Slot ID"
// @Success 204
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/provider/availability/{id} [delete]
func (h *Handler) DeleteAvailability(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return h.respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return h.respondError(c, err)
	}
	if err := h.Bookings.DeleteSlot(c.UserContext(), a, id); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
