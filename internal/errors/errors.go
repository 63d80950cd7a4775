package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation is the parent of every field validation failure.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidJSON is returned when a request body is not a JSON object.
	ErrInvalidJSON = errors.New("invalid JSON in request")
	// ErrUnknownEntity is returned for an entity name outside the known set.
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrInvalidID is returned when an id is missing, non-numeric or not positive.
	ErrInvalidID = errors.New("invalid id")
	// ErrClientNotFound is returned when a deal references a missing client.
	ErrClientNotFound = errors.New("client not found")
	// ErrWorkerNotFound is returned when a record references a missing worker.
	ErrWorkerNotFound = errors.New("worker not found")
	// ErrInvalidCredentials covers both unknown logins and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid login or password")
	// ErrMissingCredentials is returned when login or password is empty.
	ErrMissingCredentials = errors.New("enter login and password")
	// ErrDatabaseUnavailable is returned when the store cannot be reached or bootstrapped.
	ErrDatabaseUnavailable = errors.New("database connection error")
)

// Validation wraps ErrValidation with a human readable message.
func Validation(message string) error {
	return &ValidationError{Message: message}
}

// ValidationError carries the message shown to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// ErrorResponse represents the standardized error envelope.
type ErrorResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		OK:      false,
		Message: e.Message,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var validationErr *ValidationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &validationErr):
		return NewHTTPError(http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, ErrInvalidJSON),
		errors.Is(err, ErrUnknownEntity),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrClientNotFound),
		errors.Is(err, ErrWorkerNotFound),
		errors.Is(err, ErrMissingCredentials):
		return NewHTTPError(http.StatusBadRequest, rootMessage(err))
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error())
	case errors.Is(err, ErrDatabaseUnavailable):
		return NewHTTPError(http.StatusInternalServerError, ErrDatabaseUnavailable.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

// rootMessage returns the message of the known sentinel inside err, dropping wrap context.
func rootMessage(err error) string {
	for _, sentinel := range []error{ErrInvalidJSON, ErrUnknownEntity, ErrInvalidID, ErrClientNotFound, ErrWorkerNotFound, ErrMissingCredentials} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return fmt.Sprint(err)
}
