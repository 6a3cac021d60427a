package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sudharshini/backend/internal/domain/order"
	"github.com/sudharshini/backend/internal/interfaces/http/dto"
)

// Indian postal codes: six digits, no leading zero
var pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)

// SetupValidator configures gin's validator with json field names and the
// domain tags pincode, order_status and payment_mode
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("binding validator is not go-playground/validator")
	}
	RegisterValidators(v)
	return nil
}

// RegisterValidators installs the custom tags on v
func RegisterValidators(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	_ = v.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
		return pincodePattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	_ = v.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
		_, err := order.ParseOrderStatus(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("payment_mode", func(fl validator.FieldLevel) bool {
		_, err := order.ParsePaymentMode(fl.Field().String())
		return err == nil
	})
}

// FormatValidationErrors formats validation errors into a standard response.
// Non-validation errors (malformed JSON) come back as a single body detail.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	} else if err != nil {
		details = append(details, dto.ValidationDetail{Field: "body", Message: "Malformed request body"})
	}

	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError returns a validation error response
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, c.GetString(RequestIDKey)))
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "len":
		return "Must be exactly " + e.Param() + " characters"
	case "numeric":
		return "Must be numeric"
	case "datetime":
		return "Must be a date in " + e.Param() + " format"
	case "latitude":
		return "Invalid latitude"
	case "longitude":
		return "Invalid longitude"
	case "pincode":
		return "Invalid pincode"
	case "order_status":
		return "Invalid order status"
	case "payment_mode":
		return "Invalid payment mode"
	default:
		return "Invalid value"
	}
}
