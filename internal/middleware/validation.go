package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so clients see productId, not ProductID
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ErrInvalidBody is returned when the request body is not well-formed JSON
var ErrInvalidBody = errors.New("invalid request body")

// ValidateRequest validates the request body against a struct with validation tags
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// DecodeAndValidate decodes JSON request body and validates it.
// A value of the wrong JSON type is reported as a *FieldTypeError so callers
// can surface it as a field validation failure.
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &FieldTypeError{Field: typeErr.Field, Expected: typeErr.Type.Kind().String()}
		}
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return ValidateRequest(v)
}

var (
	intType = reflect.TypeOf(0)
	minInt  = decimal.NewFromInt(math.MinInt)
	maxInt  = decimal.NewFromInt(math.MaxInt)
)

// DecodeWholeNumber reads an optional integer field. Integral JSON numbers
// such as 2.0 or 2e0 are accepted. An absent field yields nil; an explicit
// null, a fraction, a string or an out-of-range value is a type error on field.
func DecodeWholeNumber(field string, raw json.RawMessage) (*int, error) {
	if raw == nil {
		return nil, nil
	}

	typeErr := &json.UnmarshalTypeError{Value: "number", Type: intType, Field: field}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		typeErr.Value = "null"
		return nil, typeErr
	}

	d, err := decimal.NewFromString(text)
	if err != nil || !d.IsInteger() || d.LessThan(minInt) || d.GreaterThan(maxInt) {
		return nil, typeErr
	}

	n := int(d.IntPart())
	return &n, nil
}

// FieldTypeError reports a JSON value whose type does not match the target field
type FieldTypeError struct {
	Field    string
	Expected string
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("field %s must be of type %s", e.Field, e.Expected)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors converts validator and type errors to a readable format
func FormatValidationErrors(err error) []ValidationError {
	var errs []ValidationError

	var typeErr *FieldTypeError
	if errors.As(err, &typeErr) {
		return append(errs, ValidationError{
			Field:   typeErr.Field,
			Message: typeMessage(typeErr.Expected),
		})
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			errs = append(errs, ValidationError{
				Field:   e.Field(),
				Message: getErrorMessage(e),
			})
		}
	}

	return errs
}

// IsValidationFailure reports whether err came from field checks rather than a malformed body
func IsValidationFailure(err error) bool {
	var typeErr *FieldTypeError
	var validationErrors validator.ValidationErrors
	return errors.As(err, &typeErr) || errors.As(err, &validationErrors)
}

func typeMessage(kind string) string {
	switch kind {
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
		return "Value must be an integer"
	case "float32", "float64":
		return "Value must be a number"
	case "string":
		return "Value must be a string"
	default:
		return "Invalid value"
	}
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	case "gt":
		return "Value must be greater than " + e.Param()
	case "lt":
		return "Value must be less than " + e.Param()
	default:
		return "Invalid value"
	}
}
