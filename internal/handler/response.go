package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "eventsapi/internal/errors"
	"eventsapi/internal/logging"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func respondList(c echo.Context, data interface{}, count int) error {
	return c.JSON(http.StatusOK, Response{Success: true, Data: data, Count: &count})
}

// ErrorHandler renders every error returned by a handler or middleware as
// an envelope. Domain errors are mapped through MapErrorToHTTP; framework
// errors keep their status code. Server-side failures are logged.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status int
		body   apperrors.ErrorResponse
	)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		message, ok := he.Message.(string)
		if !ok || message == "" {
			message = http.StatusText(status)
		}
		body = apperrors.ErrorResponse{
			Message: message,
			Code:    strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_")),
		}
	} else {
		httpErr := apperrors.MapErrorToHTTP(err)
		status = httpErr.StatusCode
		body = httpErr.ToErrorResponse()
	}

	if status >= http.StatusInternalServerError {
		logging.Error().Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Int("status", status).
			Msg("request failed")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		logging.Error().Err(err).Msg("failed to write error response")
	}
}

// invalidBody is returned when the request body cannot be decoded.
func invalidBody() error {
	return apperrors.NewValidationError("invalid request body")
}
