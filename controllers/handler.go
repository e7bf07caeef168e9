package controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meropanditlama/booking-api/booking"
	"github.com/meropanditlama/booking-api/middleware"
	"github.com/meropanditlama/booking-api/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler holds the dependencies shared by every HTTP handler.
type Handler struct {
	DB        *gorm.DB
	Bookings  *booking.Service
	JWTSecret string
	JWTExpiry time.Duration
	Log       *zap.Logger
}

func New(db *gorm.DB, bookings *booking.Service, jwtSecret string, jwtExpiry time.Duration, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.L()
	}
	return &Handler{
		DB:        db,
		Bookings:  bookings,
		JWTSecret: jwtSecret,
		JWTExpiry: jwtExpiry,
		Log:       log,
	}
}

var kindStatus = map[utils.ErrorKind]int{
	utils.KindValidation:    fiber.StatusBadRequest,
	utils.KindAuthorization: fiber.StatusForbidden,
	utils.KindState:         fiber.StatusConflict,
	utils.KindNotFound:      fiber.StatusNotFound,
	utils.KindConflict:      fiber.StatusConflict,
}

// respondError maps workflow errors to HTTP responses. Anything that is not an
// AppError is logged and reported as a generic 500.
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	if appErr, ok := utils.AsAppError(err); ok {
		status, known := kindStatus[appErr.Kind]
		if !known {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(appErr.Response())
	}

	h.Log.Error("request failed",
		zap.Error(err),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Any("request_id", c.Locals("requestID")))
	return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
		Message: "Internal server error",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
		Message: message,
		Error:   "Cannot parse JSON",
		Kind:    string(utils.KindValidation),
	})
}

func actor(c *fiber.Ctx) (booking.Actor, error) {
	a, ok := middleware.Identity(c)
	if !ok {
		return booking.Actor{}, utils.NewAuthorizationError("Authentication required")
	}
	return a, nil
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, utils.NewValidationError(name, "Invalid id")
	}
	return uint(id), nil
}
