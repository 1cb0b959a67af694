// Package validator adapts go-playground/validator to echo.Validator.
package validator

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"taskboard/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// CustomValidator implements echo.Validator.
type CustomValidator struct {
	validate *validator.Validate
}

// New builds a validator that reports fields by their JSON names and sees
// through util.Optional wrappers.
func New() *CustomValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)
	validate.RegisterCustomTypeFunc(optionalValue,
		util.Optional[string]{},
		util.Optional[util.Timestamp]{},
	)
	// bcrypt only reads the first 72 bytes of a password.
	_ = validate.RegisterValidation("maxbytes", maxBytes)

	return &CustomValidator{validate: validate}
}

// Validate validates a struct and returns a *ValidationError listing every failing field.
func (cv *CustomValidator) Validate(i any) error {
	err := cv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return NewValidationError(fieldErrs)
	}

	return errors.WithStack(err)
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}

	return name
}

func optionalValue(field reflect.Value) any {
	if v, ok := field.Interface().(interface{ ValidationValue() any }); ok {
		return v.ValidationValue()
	}

	return nil
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}

	return len(fl.Field().String()) <= limit
}

// ValidationError is returned for request bodies that fail validation.
// It renders as 422 VALIDATION_FAILED with one message per field.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError converts validator errors into field messages.
func NewValidationError(fieldErrs validator.ValidationErrors) *ValidationError {
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = describe(fe)
		}
	}

	return &ValidationError{Fields: fields}
}

// NewFieldError reports a single invalid field.
func NewFieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+" "+msg)
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) HTTPCode() int {
	return http.StatusUnprocessableEntity
}

func (e *ValidationError) ErrorCode() string {
	return "VALIDATION_FAILED"
}

func (e *ValidationError) Message() string {
	return "Request validation failed"
}

func (e *ValidationError) Details() string {
	return e.Error()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Param() == "1" {
			return "must not be empty"
		}

		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "maxbytes":
		return "must be at most " + fe.Param() + " bytes"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	default:
		return "is invalid"
	}
}
