// Package validator checks request payloads with go-playground/validator tags
// and a few plant specific rules.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// LineNumberStep is the spacing of production line numbers (100, 200, ...).
const LineNumberStep = 100

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = validate.RegisterValidation("linenumber", validateLineNumber)
	_ = validate.RegisterValidation("notblank", validateNotBlank)
}

// validateLineNumber accepts positive multiples of LineNumberStep.
func validateLineNumber(fl validator.FieldLevel) bool {
	n := fl.Field().Int()
	return IsLineNumber(int(n))
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// IsLineNumber reports whether n is a valid line number.
func IsLineNumber(n int) bool {
	return n > 0 && n%LineNumberStep == 0
}

// ErrInvalidRequest wraps every validation failure returned by Struct.
var ErrInvalidRequest = errors.New("invalid request")

// Struct validates v and flattens field errors into one readable message.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "linenumber":
		return fmt.Sprintf("%s must be a positive multiple of %d (e.g. 100, 200, 300)", field, LineNumberStep)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %q", field, fe.Tag())
	}
}
