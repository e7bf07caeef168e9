package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meropanditlama/booking-api/models"
)

// GetAllServices godoc
// @Summary Get all services
// @Description Get the service catalog
// @Tags services
// @Accept json
// @Produce json
// @Success 200 {array} models.Service
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/services [get]
func (h *Handler) GetAllServices(c *fiber.Ctx) error {
	var services []models.Service
	if err := h.DB.WithContext(c.UserContext()).Order("name ASC").Find(&services).Error; err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(services)
}
