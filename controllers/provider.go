package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/meropanditlama/booking-api/booking"
	"github.com/meropanditlama/booking-api/models"
	"github.com/meropanditlama/booking-api/utils"
	"gorm.io/gorm"
)

type ProviderFilter struct {
	ReligionType string `json:"religion_type" query:"religion_type" validate:"omitempty,oneof=hindu buddhist"`
	Location     string `json:"location" query:"location"`
}

type AvailabilityRange struct {
	DateFrom string `json:"date_from" query:"date_from" validate:"required,datetime=2006-01-02"`
	DateTo   string `json:"date_to" query:"date_to" validate:"required,datetime=2006-01-02"`
}

// ListProviders godoc
// @Summary List providers
// @Description List verified providers
// @Tags providers
// @Accept json
// @Produce json
// @Param religion_type query string false "hindu or buddhist"
// @Param location query string false "Location substring"
// @Success 200 {array} models.ProviderProfile
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/providers [get]
func (h *Handler) ListProviders(c *fiber.Ctx) error {
	filter := new(ProviderFilter)
	if err := c.QueryParser(filter); err != nil {
		return badRequest(c, "Invalid query parameters")
	}
	if err := validateStruct(filter); err != nil {
		return h.respondError(c, err)
	}

	q := h.DB.WithContext(c.UserContext()).
		Preload("User").
		Preload("Services").
		Where("verified = ?", true)
	if filter.ReligionType != "" {
		q = q.Where("religion_type = ?", filter.ReligionType)
	}
	if location := strings.TrimSpace(filter.Location); location != "" {
		q = q.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(location)+"%")
	}

	var providers []models.ProviderProfile
	if err := q.Order("id ASC").Find(&providers).Error; err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(providers)
}

func (h *Handler) verifiedProvider(c *fiber.Ctx) (*models.ProviderProfile, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}
	var provider models.ProviderProfile
	err = h.DB.WithContext(c.UserContext()).
		Preload("User").
		Preload("Services").
		Where("verified = ?", true).
		First(&provider, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("provider")
		}
		return nil, err
	}
	return &provider, nil
}

// GetProvider godoc
// @Summary Get provider
// @Description Get a verified provider with rating summary
// @Tags providers
// @Accept json
// @Produce json
// @Param id path int true "Provider ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/providers/{id} [get]
func (h *Handler) GetProvider(c *fiber.Ctx) error {
	provider, err := h.verifiedProvider(c)
	if err != nil {
		return h.respondError(c, err)
	}
	avg, total, err := h.Bookings.RatingSummary(c.UserContext(), provider.ID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"provider":       provider,
		"average_rating": avg,
		"total_reviews":  total,
	})
}

// GetProviderAvailability godoc
// @Summary Provider availability
// @Description List a provider's free slots between date_from and date_to inclusive
// @Tags providers
// @Accept json
// @Produce json
// @Param id path int true "Provider ID"
// @Param date_from query string true "YYYY-MM-DD"
// @Param date_to query string true "YYYY-MM-DD"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/providers/{id}/availability [get]
func (h *Handler) GetProviderAvailability(c *fiber.Ctx) error {
	provider, err := h.verifiedProvider(c)
	if err != nil {
		return h.respondError(c, err)
	}

	dates := new(AvailabilityRange)
	if err := c.QueryParser(dates); err != nil {
		return badRequest(c, "Invalid query parameters")
	}
	if err := validateStruct(dates); err != nil {
		return h.respondError(c, err)
	}
	dateFrom, dateTo := dates.DateFrom, dates.DateTo

	slots, err := h.Bookings.ListSlots(c.UserContext(), provider.ID, booking.SlotFilter{
		DateFrom: dateFrom,
		DateTo:   dateTo,
		FreeOnly: true,
	})
	if err != nil {
		return h.respondError(c, err)
	}

	name := ""
	if provider.User != nil {
		name = provider.User.FullName()
	}
	return c.JSON(fiber.Map{
		"provider_id":   provider.ID,
		"provider_name": name,
		"date_from":     dateFrom,
		"date_to":       dateTo,
		"availability":  slots,
	})
}

// GetProviderReviews godoc
// @Summary Provider reviews
// @Description List a provider's reviews with the rating summary
// @Tags providers
// @Accept json
// @Produce json
// @Param id path int true "Provider ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/providers/{id}/reviews [get]
func (h *Handler) GetProviderReviews(c *fiber.Ctx) error {
	provider, err := h.verifiedProvider(c)
	if err != nil {
		return h.respondError(c, err)
	}
	ctx := c.UserContext()
	reviews, err := h.Bookings.ListReviews(ctx, provider.ID)
	if err != nil {
		return h.respondError(c, err)
	}
	avg, total, err := h.Bookings.RatingSummary(ctx, provider.ID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"provider_id":    provider.ID,
		"average_rating": avg,
		"total_reviews":  total,
		"reviews":        reviews,
	})
}

// GetProviderProfile godoc
// @Summary Get provider profile
// @Description Get the authenticated provider's own profile
// @Tags provider
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ProviderProfile
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/provider/profile [get]
func (h *Handler) GetProviderProfile(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return h.respondError(c, err)
	}
	profile, err := h.Bookings.ProviderProfile(c.UserContext(), a)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(profile)
}

type ProviderProfileInput struct {
	ExperienceYears    *int     `json:"experience_years" validate:"omitempty,min=0"`
	Location           *string  `json:"location" validate:"omitempty,max=100"`
	ShortDescription   *string  `json:"short_description"`
	ShortDescriptionNe *string  `json:"short_description_ne"`
	PricePerService    *float64 `json:"price_per_service" validate:"omitempty,min=0"`
	Services           *[]uint  `json:"services" validate:"omitempty,dive,min=1"`
}

// UpdateProviderProfile godoc
// @Summary Update provider profile
// @Description Edit public details. Verification is managed by administrators.
// @Tags provider
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body ProviderProfileInput true "Profile fields"
// @Success 200 {object} models.ProviderProfile
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/provider/profile [put]
func (h *Handler) UpdateProviderProfile(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return h.respondError(c, err)
	}
	input := new(ProviderProfileInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := validateStruct(input); err != nil {
		return h.respondError(c, err)
	}

	ctx := c.UserContext()
	profile, err := h.Bookings.ProviderProfile(ctx, a)
	if err != nil {
		return h.respondError(c, err)
	}

	updates := map[string]interface{}{}
	if input.ExperienceYears != nil {
		updates["experience_years"] = *input.ExperienceYears
	}
	if input.Location != nil {
		updates["location"] = strings.TrimSpace(*input.Location)
	}
	if input.ShortDescription != nil {
		updates["short_description"] = *input.ShortDescription
	}
	if input.ShortDescriptionNe != nil {
		updates["short_description_ne"] = *input.ShortDescriptionNe
	}
	if input.PricePerService != nil {
		updates["price_per_service"] = *input.PricePerService
	}

	err = h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.ProviderProfile{}).Where("id = ?", profile.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		if input.Services == nil {
			return nil
		}
		services := []models.Service{}
		if len(*input.Services) > 0 {
			if err := tx.Where("id IN ?", *input.Services).Find(&services).Error; err != nil {
				return err
			}
			if len(services) != len(uniqueIDs(*input.Services)) {
				return utils.NewValidationError("services", "One or more services do not exist.")
			}
		}
		return tx.Model(profile).Association("Services").Replace(services)
	})
	if err != nil {
		return h.respondError(c, err)
	}

	profile, err = h.Bookings.ProviderProfile(ctx, a)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"profile": profile,
	})
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// GetDashboard godoc
// @Summary Provider dashboard
// @Description Get booking statistics for the authenticated provider
// @Tags provider
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} booking.Dashboard
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/provider/dashboard [get]
func (h *Handler) GetDashboard(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return h.respondError(c, err)
	}
	dashboard, err := h.Bookings.Dashboard(c.UserContext(), a)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(dashboard)
}
