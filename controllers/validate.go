package controllers

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/meropanditlama/booking-api/utils"
)

var npMobilePattern = regexp.MustCompile(`^9\d{9}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// npmobile accepts Nepal mobile numbers. An empty value clears the number.
	if err := v.RegisterValidation("npmobile", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || npMobilePattern.MatchString(value)
	}); err != nil {
		panic(err)
	}
	return v
}

var fieldMessages = map[string]string{
	"email":             "Enter a valid email address.",
	"password":          "This password is too short. It must contain at least 8 characters.",
	"password2":         "Password fields didn't match.",
	"phone":             "Enter a valid Nepal mobile number (98XXXXXXXX).",
	"language_pref":     "Language must be en or ne.",
	"role":              "Role must be customer or provider.",
	"religion_type":     "Religion type must be hindu or buddhist.",
	"experience_years":  "Ensure this value is greater than or equal to 0.",
	"price_per_service": "Ensure this value is greater than or equal to 0.",
	"services":          "Select valid service ids.",
	"date_from":         "date_from and date_to are required (YYYY-MM-DD)",
	"date_to":           "date_from and date_to are required (YYYY-MM-DD)",
}

// validateStruct runs the validate tags on payload and reports the first
// failure as a validation error on the offending JSON field.
func validateStruct(payload interface{}) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	field := fe.Field()
	if i := strings.IndexByte(field, '['); i > 0 {
		field = field[:i]
	}
	message, ok := fieldMessages[field]
	if !ok {
		message = "Invalid value (" + fe.Tag() + ")."
	}
	return utils.NewValidationError(field, message)
}
