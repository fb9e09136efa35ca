// Package validate wraps go-playground/validator with the rules shared by
// number and user inputs. Failures come back as apperr validation errors.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"number-inventory/internal/apperr"

	"github.com/go-playground/validator/v10"
)

// phonePattern is deliberately permissive: digits, '+', '-', whitespace and parentheses.
var phonePattern = regexp.MustCompile(`^[0-9+\-\s()]+$`)

var v *validator.Validate

func init() {
	v = validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
}

// IsPhone reports whether s only contains phone characters.
func IsPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// Struct validates s and converts the first failure into a readable message.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate: %w", err)
	}
	return apperr.Validation("%s", describe(verrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "phone":
		return "Please enter a valid phone number"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "alphanumunicode", "username":
		return fmt.Sprintf("%s contains invalid characters", field)
	default:
		return fmt.Sprintf("%s failed %q validation", field, fe.Tag())
	}
}
