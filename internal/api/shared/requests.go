package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/task-api/internal/domain"
)

// TagAtLeastOne is the struct-level validation tag reported when a request
// that must change something carries no fields.
const TagAtLeastOne = "atleastone"

// ErrInvalidJSON is returned by DecodeJSON for syntactically invalid bodies.
var ErrInvalidJSON = errors.New("invalid JSON")

// Global validator instance for reuse
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = fld.Tag.Get("query")
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// RegisterStructValidation adds a struct-level rule for the given request types.
func RegisterStructValidation(fn validator.StructLevelFunc, types ...interface{}) {
	validate.RegisterStructValidation(fn, types...)
}

// DecodeJSON decodes the request body into the given struct.
// Syntax errors yield ErrInvalidJSON; a value of the wrong type yields a
// *domain.ValidationError naming the field.
func DecodeJSON(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			return domain.NewValidationError("", "request body has an invalid type")
		}
		return domain.NewValidationError(field, field+" has an invalid type")
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return err
	}

	return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
}

// ValidateRequest validates v with its struct tags and returns the first
// violation as a *domain.ValidationError.
func ValidateRequest(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return domain.NewValidationError(fe.Field(), ValidationMessage(fe))
	}

	return domain.NewValidationError("", err.Error())
}

// ValidationMessage renders a single validator failure for clients.
func ValidationMessage(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case TagAtLeastOne:
		return "at least one field must be provided"
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(strings.Fields(fe.Param()), ", "))
	case "min", "gte":
		if isString(fe.Kind()) {
			if fe.Param() == "1" {
				return field + " must not be empty"
			}
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		if isString(fe.Kind()) {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "boolean":
		return field + ` must be "true" or "false"`
	default:
		return field + " is invalid"
	}
}

func isString(k reflect.Kind) bool {
	return k == reflect.String
}
