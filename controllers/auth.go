package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/meropanditlama/booking-api/models"
	"github.com/meropanditlama/booking-api/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type SignupInput struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	Password2    string `json:"password2" validate:"eqfield=Password"`
	FirstName    string `json:"first_name" validate:"max=150"`
	LastName     string `json:"last_name" validate:"max=150"`
	Phone        string `json:"phone" validate:"omitempty,npmobile"`
	LanguagePref string `json:"language_pref" validate:"omitempty,oneof=en ne"`
	Role         string `json:"role" validate:"omitempty,oneof=customer provider"`
	ReligionType string `json:"religion_type" validate:"required_if=Role provider,omitempty,oneof=hindu buddhist"`
}

func (in *SignupInput) normalize() (models.Role, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := validateStruct(in); err != nil {
		return "", err
	}
	if in.LanguagePref == "" {
		in.LanguagePref = models.LanguageEnglish
	}
	if in.Role == "" {
		return models.RoleCustomer, nil
	}
	return models.ParseRole(in.Role)
}

// Register godoc
// @Summary Register a user
// @Description Create a customer or provider account. Provider accounts get an unverified profile.
// @Tags auth
// @Accept json
// @Produce json
// @Param user body SignupInput true "Signup details"
// @Success 201 {object} models.User
// @Failure 400 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/auth/signup [post]
func (h *Handler) Register(c *fiber.Ctx) error {
	input := new(SignupInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Invalid request body")
	}
	role, err := input.normalize()
	if err != nil {
		return h.respondError(c, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return h.respondError(c, err)
	}

	user := models.User{
		Email:        input.Email,
		Password:     string(hashedPassword),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		Role:         role,
		LanguagePref: input.LanguagePref,
	}

	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return utils.NewValidationError("email", "User with this email already exists.")
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return utils.NewValidationError("email", "User with this email already exists.")
			}
			return err
		}
		if role != models.RoleProvider {
			return nil
		}
		return tx.Create(&models.ProviderProfile{UserID: user.ID, ReligionType: input.ReligionType}).Error
	})
	if err != nil {
		return h.respondError(c, err)
	}

	h.Log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful",
		"user":    user,
	})
}

// Login godoc
// @Summary Log in
// @Description Authenticate with email and password and receive a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body object true "Email and password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/auth/login [post]
func (h *Handler) Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Invalid request body")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return h.respondError(c, utils.NewValidationError("email", "Email and password are required."))
	}

	var user models.User
	if err := h.DB.WithContext(c.UserContext()).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalidCredentials(c)
		}
		return h.respondError(c, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return invalidCredentials(c)
	}

	token, err := h.issueToken(&user)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

func (h *Handler) issueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"name":  user.FullName(),
		"exp":   time.Now().Add(h.JWTExpiry).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.JWTSecret))
}

func invalidCredentials(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
		Message: "Invalid email or password.",
		Error:   "Unauthorized",
	})
}

// GetProfile godoc
// @Summary Get profile
// @Description Get the authenticated user
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/profile [get]
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return h.respondError(c, err)
	}
	var user models.User
	if err := h.DB.WithContext(c.UserContext()).First(&user, a.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return h.respondError(c, utils.NewNotFoundError("user"))
		}
		return h.respondError(c, err)
	}
	return c.JSON(user)
}

type ProfileUpdateInput struct {
	FirstName    *string `json:"first_name" validate:"omitempty,max=150"`
	LastName     *string `json:"last_name" validate:"omitempty,max=150"`
	Phone        *string `json:"phone" validate:"omitempty,npmobile"`
	LanguagePref *string `json:"language_pref" validate:"omitempty,oneof=en ne"`
}

// UpdateProfile godoc
// @Summary Update profile
// @Description Change name, phone and language. Role and email are not editable.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body ProfileUpdateInput true "Profile fields"
// @Success 200 {object} models.User
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/profile [put]
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return h.respondError(c, err)
	}
	input := new(ProfileUpdateInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := validateStruct(input); err != nil {
		return h.respondError(c, err)
	}

	updates := map[string]interface{}{}
	if input.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.LanguagePref != nil {
		updates["language_pref"] = *input.LanguagePref
	}

	db := h.DB.WithContext(c.UserContext())
	if len(updates) > 0 {
		if err := db.Model(&models.User{}).Where("id = ?", a.UserID).Updates(updates).Error; err != nil {
			return h.respondError(c, err)
		}
	}

	var user models.User
	if err := db.First(&user, a.UserID).Error; err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    user,
	})
}
