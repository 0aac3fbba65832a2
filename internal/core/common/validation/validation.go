// Package validation runs struct-tag validation for request DTOs and reports
// failures as AppErrors carrying per-field details.
package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	errors "github.com/frahmantamala/request-routing/internal"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func validate() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
	return instance
}

// Struct validates v against its `validate` tags. Missing required fields
// yield ErrMissingFields; any other failure yields a VALIDATION_FAILED error.
func Struct(v interface{}) *errors.AppError {
	err := validate().Struct(v)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !stderrors.As(err, &ve) {
		return errors.NewValidationError(err.Error(), errors.ErrCodeValidationFailed)
	}

	details := errors.ValidationErrors{Errors: make([]errors.ValidationError, 0, len(ve))}
	onlyRequired := true
	for _, fe := range ve {
		code := codeFor(fe)
		if code != errors.ErrCodeMissingFields {
			onlyRequired = false
		}
		details.Errors = append(details.Errors, errors.ValidationError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
			Code:    string(code),
		})
	}

	if onlyRequired {
		return errors.ErrMissingFields.WithDetails(details)
	}
	return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).WithDetails(details)
}

// Var validates a single value against tag.
func Var(field string, value interface{}, tag string) *errors.AppError {
	if err := validate().Var(value, tag); err != nil {
		var ve validator.ValidationErrors
		if stderrors.As(err, &ve) && len(ve) > 0 {
			return errors.NewValidationFieldError(field, fieldMessageFor(field, ve[0]), codeFor(ve[0]))
		}
		return errors.NewValidationFieldError(field, err.Error(), errors.ErrCodeValidationFailed)
	}
	return nil
}

func codeFor(fe validator.FieldError) errors.ErrorCode {
	switch fe.Tag() {
	case "required":
		return errors.ErrCodeMissingFields
	case "datetime":
		return errors.ErrCodeInvalidDate
	default:
		return errors.ErrCodeValidationFailed
	}
}

func fieldMessage(fe validator.FieldError) string {
	return fieldMessageFor(fe.Field(), fe)
}

func fieldMessageFor(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
