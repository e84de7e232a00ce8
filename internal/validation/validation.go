package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

const specialChars = "!@#$%^&*()-_=+\\|[]{};:/?.><,`~'\""

// New returns a validator with the LIMS custom rules registered.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("username", validUsername)
	_ = v.RegisterValidation("display_name", validDisplayName)
	_ = v.RegisterValidation("password_strength", strongPassword)
	return v
}

// validUsername enforces 3-20 characters drawn from letters, digits,
// '.', '_' and '-'.
func validUsername(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) < 3 || len(value) > 20 {
		return false
	}
	return usernamePattern.MatchString(value)
}

// validDisplayName enforces 2-100 characters after trimming.
func validDisplayName(fl validator.FieldLevel) bool {
	trimmed := strings.TrimSpace(fl.Field().String())
	return len(trimmed) >= 2 && len(trimmed) <= 100
}

// strongPassword enforces 8-128 characters containing at least one
// uppercase letter, one lowercase letter, one digit and one special
// character.
func strongPassword(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) < 8 || len(value) > 128 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}
	return upper && lower && digit && special
}

// Reason renders a field-specific failure message so callers learn which
// rule was violated instead of a generic error.
func Reason(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "invalid payload"
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "username":
		return fmt.Sprintf("%s must be 3-20 characters of letters, digits, '.', '_' or '-'", field)
	case "display_name":
		return fmt.Sprintf("%s must be 2-100 characters after trimming", field)
	case "password_strength":
		return fmt.Sprintf("%s must be 8-128 characters with an uppercase letter, a lowercase letter, a digit and a special character", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, fe.Param())
	case "required":
		return fmt.Sprintf("%s is required", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
