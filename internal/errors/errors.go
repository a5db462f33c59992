package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenMissing is returned when a protected route is called without a bearer token.
	ErrTokenMissing = errors.New("access token not provided")
	// ErrTokenInvalid is returned when a bearer token fails verification or was revoked.
	ErrTokenInvalid = errors.New("invalid or expired token")
	// ErrUserNotFound is returned when a token refers to a user that no longer exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering an email that is already in use.
	ErrEmailTaken = errors.New("email already registered")

	// ErrCategoryNotFound is returned when a category id does not resolve.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryNameTaken is returned when a category name is already in use.
	ErrCategoryNameTaken = errors.New("a category with this name already exists")
	// ErrCategoryInUse is returned when deleting a category still referenced by events.
	ErrCategoryInUse = errors.New("category is referenced by existing events")
	// ErrLocationNotFound is returned when a location id does not resolve.
	ErrLocationNotFound = errors.New("location not found")
	// ErrLocationInUse is returned when deleting a location still referenced by events.
	ErrLocationInUse = errors.New("location is referenced by existing events")
	// ErrEventNotFound is returned when an event id does not resolve.
	ErrEventNotFound = errors.New("event not found")
	// ErrNotEventOwner is returned when a user modifies an event they did not create.
	ErrNotEventOwner = errors.New("you do not have permission to modify this event")

	// ErrNoFile is returned when an upload request carries no file.
	ErrNoFile = errors.New("no image file provided")
	// ErrUnsupportedImageType is returned for files outside the image allow-list.
	ErrUnsupportedImageType = errors.New("only image files are allowed (jpeg, jpg, png, gif, webp)")
	// ErrImageTooLarge is returned when a file exceeds the upload ceiling.
	ErrImageTooLarge = errors.New("image exceeds the maximum allowed size")
	// ErrImageHostUnavailable is returned while the image host circuit is open.
	ErrImageHostUnavailable = errors.New("image host temporarily unavailable")
)

// ValidationError reports malformed or missing request fields.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error for the given fields.
func NewValidationError(message string, fields ...string) *ValidationError {
	return &ValidationError{Fields: fields, Message: message}
}

// ConfigError reports a required external service that is not configured.
type ConfigError struct {
	Service string
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s is not configured: missing %s", e.Service, strings.Join(e.Missing, ", "))
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Code    string   `json:"code"`
	Fields  []string `json:"fields,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Fields     []string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Success: false,
		Message: e.Message,
		Code:    e.Code,
		Fields:  e.Fields,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything unrecognized
// becomes a generic 500 so internal details never reach the client.
func MapErrorToHTTP(err error) *HTTPError {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		httpErr := NewHTTPError(http.StatusBadRequest, validationErr.Message, "VALIDATION_ERROR")
		httpErr.Fields = validationErr.Fields
		return httpErr
	}
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return NewHTTPError(http.StatusInternalServerError, configErr.Error(), "CONFIGURATION_ERROR")
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrTokenMissing):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "TOKEN_MISSING")
	case errors.Is(err, ErrTokenInvalid):
		return NewHTTPError(http.StatusForbidden, err.Error(), "TOKEN_INVALID")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrCategoryNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "CATEGORY_NOT_FOUND")
	case errors.Is(err, ErrCategoryNameTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "CATEGORY_NAME_TAKEN")
	case errors.Is(err, ErrCategoryInUse):
		return NewHTTPError(http.StatusConflict, err.Error(), "CATEGORY_IN_USE")
	case errors.Is(err, ErrLocationNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "LOCATION_NOT_FOUND")
	case errors.Is(err, ErrLocationInUse):
		return NewHTTPError(http.StatusConflict, err.Error(), "LOCATION_IN_USE")
	case errors.Is(err, ErrEventNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "EVENT_NOT_FOUND")
	case errors.Is(err, ErrNotEventOwner):
		return NewHTTPError(http.StatusForbidden, err.Error(), "NOT_EVENT_OWNER")
	case errors.Is(err, ErrNoFile):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "NO_FILE")
	case errors.Is(err, ErrUnsupportedImageType):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "UNSUPPORTED_IMAGE_TYPE")
	case errors.Is(err, ErrImageTooLarge):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "IMAGE_TOO_LARGE")
	case errors.Is(err, ErrImageHostUnavailable):
		return NewHTTPError(http.StatusServiceUnavailable, err.Error(), "IMAGE_HOST_UNAVAILABLE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
