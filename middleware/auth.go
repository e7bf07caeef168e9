package middleware

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/meropanditlama/booking-api/booking"
	"github.com/meropanditlama/booking-api/models"
	"github.com/meropanditlama/booking-api/utils"
	"go.uber.org/zap"
)

const (
	localUserID = "userID"
	localRole   = "role"
	localName   = "name"
)

func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    []byte(secret),
		SigningMethod: "HS256",
		ErrorHandler:  jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return unauthorized(c, "Invalid token")
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return unauthorized(c, "Invalid token claims")
			}

			userID, err := extractUserID(claims)
			if err != nil {
				zap.L().Debug("rejecting token", zap.Error(err))
				return unauthorized(c, "Invalid user ID in token")
			}
			role, err := extractRole(claims)
			if err != nil {
				zap.L().Debug("rejecting token", zap.Error(err))
				return unauthorized(c, "Invalid role in token")
			}
			name, _ := claims["name"].(string)

			c.Locals(localUserID, userID)
			c.Locals(localRole, role)
			c.Locals(localName, name)
			return c.Next()
		},
	})
}

// Identity returns the authenticated actor set by Protected.
func Identity(c *fiber.Ctx) (booking.Actor, bool) {
	userID, ok := c.Locals(localUserID).(uint)
	if !ok || userID == 0 {
		return booking.Actor{}, false
	}
	role, ok := c.Locals(localRole).(models.Role)
	if !ok {
		return booking.Actor{}, false
	}
	name, _ := c.Locals(localName).(string)
	return booking.Actor{UserID: userID, Role: role, Name: name}, true
}

// extractUserID handles the numeric and string forms of the id claim
func extractUserID(claims jwt.MapClaims) (uint, error) {
	idVal := claims["id"]
	if idVal == nil {
		return 0, fmt.Errorf("no ID found in claims")
	}

	switch v := idVal.(type) {
	case float64:
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse ID string: %v", err)
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("unsupported ID type: %T", v)
	}
}

func extractRole(claims jwt.MapClaims) (models.Role, error) {
	roleVal, ok := claims["role"].(string)
	if !ok {
		return "", fmt.Errorf("no role found in claims")
	}
	return models.ParseRole(roleVal)
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
		Error:   "Unauthorized",
		Message: message,
	})
}

// jwtError handles JWT errors
func jwtError(c *fiber.Ctx, err error) error {
	zap.L().Debug("jwt rejected", zap.Error(err), zap.String("path", c.Path()))
	return unauthorized(c, "Invalid or expired token")
}
