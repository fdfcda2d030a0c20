// Package render writes the JSON response shapes handlers speak.
// Failures always come back as {"success": false, "message": ...} so
// clients have a single error contract across every endpoint.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

const contentTypeJSON = "application/json; charset=utf-8"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	configureValidator(v)
	return v
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Errors  []fieldError `json:"errors,omitempty"`
}

// JSON writes data as the response body with status 200
func JSON(w http.ResponseWriter, data any) {
	JSONStatus(w, http.StatusOK, data)
}

// JSONStatus writes data as the response body with the given status
func JSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// Error writes the common failure envelope with the given status
func Error(w http.ResponseWriter, message string, status int) {
	JSONStatus(w, status, errorResponse{Success: false, Message: message})
}

// DecodeError maps a json.Decoder error to a 400 response.
// Type mismatches get a message naming the offending field, everything
// else is reported as a parse failure.
func DecodeError(w http.ResponseWriter, err error) {
	var typeErr *json.UnmarshalTypeError

	message := fmt.Sprintf("Failed to parse JSON: %v", err)
	if errors.As(err, &typeErr) {
		message = fmt.Sprintf("Invalid data type for field '%v'", typeErr.Field)
	}

	Error(w, message, http.StatusBadRequest)
}

// ValidationErrors writes a 400 with one entry per failed field
func ValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	fields := make([]fieldError, 0, len(errs))
	for _, err := range errs {
		fields = append(fields, fieldError{
			Field:   err.Field(),
			Message: messageForTag(err),
		})
	}

	JSONStatus(w, http.StatusBadRequest, errorResponse{
		Success: false,
		Message: "Validation failed",
		Errors:  fields,
	})
}

func messageForTag(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email address"
	case "min":
		return fmt.Sprintf("Value is too short (minimum %v)", err.Param())
	case "max":
		return fmt.Sprintf("Value is too long (maximum %v)", err.Param())
	default:
		return "Invalid value"
	}
}

// BindAndValidate decodes the request body into T and validates it.
// On failure the error response is already written, the caller just returns.
func BindAndValidate[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var value T

	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		DecodeError(w, err)
		return value, err
	}

	if err := validate.Struct(value); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			ValidationErrors(w, errs)
			return value, err
		}

		Error(w, "Failed to validate request", http.StatusInternalServerError)
		return value, err
	}

	return value, nil
}
