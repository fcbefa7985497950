package services

import (
	"regexp"

	"bozor/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	// Email must look like local@domain.tld.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Phone must be the fixed country code plus nine digits: +998XXXXXXXXX.
	phonePattern = regexp.MustCompile(`^\+998[0-9]{9}$`)
)

// ValidationError is a locally-recovered form rejection. It never reaches
// the network and carries a single human-readable reason.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// CheckoutValidator checks a CheckoutForm before any order is constructed.
// It is pure: no side effects, no partial submission on rejection.
type CheckoutValidator struct {
	validate *validator.Validate
}

// NewCheckoutValidator creates a new CheckoutValidator.
func NewCheckoutValidator() *CheckoutValidator {
	v := validator.New()
	// Registration only fails for empty tag names, which are fixed here.
	_ = v.RegisterValidation("checkout_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phone_uz", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return &CheckoutValidator{validate: v}
}

// Validate returns nil when the form may proceed to order submission, or a
// *ValidationError with one reason for the first failed rule.
func (cv *CheckoutValidator) Validate(form *models.CheckoutForm) error {
	if err := cv.validate.Struct(form); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok || len(validationErrors) == 0 {
			return &ValidationError{Reason: "Checkout form is invalid"}
		}
		return &ValidationError{Reason: reasonFor(validationErrors[0])}
	}
	if !form.PaymentMethod.Valid() {
		return &ValidationError{Reason: "Payment method must be cash, click or payme"}
	}
	return nil
}

// reasonFor maps a failed rule to the message shown next to the form.
func reasonFor(fieldError validator.FieldError) string {
	switch fieldError.Field() {
	case "FullName":
		return "Full name is required"
	case "Email":
		if fieldError.Tag() == "required" {
			return "Email is required"
		}
		return "Email must look like name@example.com"
	case "Phone":
		if fieldError.Tag() == "required" {
			return "Phone number is required"
		}
		return "Phone number must be in +998XXXXXXXXX format"
	case "Address":
		return "Address is required"
	case "City":
		return "City is required"
	case "PaymentMethod":
		return "Payment method is required"
	}
	return "Checkout form is invalid"
}
